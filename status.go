package vmb

import (
	"errors"
	"fmt"
)

// Status is a status code returned by the camera runtime. Status implements
// error so that runtime failures can be returned, compared and surfaced
// unchanged through the call chain.
type Status int32

// Status codes. Negative values are errors.
const (
	StatusSuccess        Status = 0
	StatusInternalFault  Status = -1
	StatusApiNotStarted  Status = -2
	StatusNotFound       Status = -3
	StatusBadHandle      Status = -4
	StatusDeviceNotOpen  Status = -5
	StatusInvalidAccess  Status = -6
	StatusBadParameter   Status = -7
	StatusStructSize     Status = -8
	StatusMoreData       Status = -9
	StatusWrongType      Status = -10
	StatusInvalidValue   Status = -11
	StatusTimeout        Status = -12
	StatusOther          Status = -13
	StatusResources      Status = -14
	StatusInvalidCall    Status = -15
	StatusNoTL           Status = -16
	StatusNotImplemented Status = -17
	StatusNotSupported   Status = -18
	StatusIncomplete     Status = -19
)

var statusMessages = map[Status]string{
	StatusSuccess:        "Success.",
	StatusInternalFault:  "Unexpected fault in VmbApi or driver.",
	StatusApiNotStarted:  "API not started.",
	StatusNotFound:       "Not found.",
	StatusBadHandle:      "Invalid handle.",
	StatusDeviceNotOpen:  "Device not open.",
	StatusInvalidAccess:  "Invalid access.",
	StatusBadParameter:   "Bad parameter.",
	StatusStructSize:     "Wrong DLL version.",
	StatusMoreData:       "More data returned than memory provided.",
	StatusWrongType:      "Wrong type.",
	StatusInvalidValue:   "Invalid value.",
	StatusTimeout:        "Timeout.",
	StatusOther:          "TL error.",
	StatusResources:      "Resource not available.",
	StatusInvalidCall:    "Invalid call.",
	StatusNoTL:           "TL not loaded.",
	StatusNotImplemented: "Not implemented.",
	StatusNotSupported:   "Not supported.",
	StatusIncomplete:     "Operation is not complete.",
}

// Message returns a descriptive, human-readable text for the status code.
// Unknown codes return "Unknown".
func (s Status) Message() string {
	if m, ok := statusMessages[s]; ok {
		return m
	}
	return "Unknown"
}

// Error implements the error interface.
func (s Status) Error() string {
	return fmt.Sprintf("%s (%d)", s.Message(), int32(s))
}

// StatusOf returns the Status carried by err. A nil error is StatusSuccess.
// Errors that do not wrap a Status are reported as StatusOther.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusOther
}

// ErrorCodeToMessage translates an error, as returned by any function in this
// module, to a readable message.
func ErrorCodeToMessage(err error) string {
	return StatusOf(err).Message()
}
