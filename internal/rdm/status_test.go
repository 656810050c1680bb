package rdm

import (
	"strings"
	"testing"
)

func TestResponseStatusClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        ResponseStatus
		wantSucceeded bool
		wantErrText   string // "" means no error string expected
	}{
		{
			name:          "valid reply",
			status:        ResponseStatus{Type: ResponseValid},
			wantSucceeded: true,
		},
		{
			name:          "broadcast has no data and no error",
			status:        ResponseStatus{Type: ResponseBroadcast},
			wantSucceeded: false,
		},
		{
			name:          "nack carries reason text",
			status:        NackedStatus(NackWriteProtect),
			wantSucceeded: false,
			wantErrText:   "NACKED with code: Write protect",
		},
		{
			name:          "malformed carries detail",
			status:        MalformedStatus("short payload"),
			wantSucceeded: false,
			wantErrText:   "Malformed RDM response short payload",
		},
		{
			name:          "transport failure carries detail",
			status:        TransportError("request timed out"),
			wantSucceeded: false,
			wantErrText:   "RDM command error: request timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Succeeded(); got != tt.wantSucceeded {
				t.Errorf("Succeeded() = %v, want %v", got, tt.wantSucceeded)
			}

			errText := tt.status.ErrorString()
			if tt.wantErrText == "" {
				if errText != "" {
					t.Errorf("ErrorString() = %q, want empty", errText)
				}
				if tt.status.Err() != nil {
					t.Errorf("Err() = %v, want nil", tt.status.Err())
				}
				return
			}
			if !strings.Contains(errText, tt.wantErrText) {
				t.Errorf("ErrorString() = %q, want substring %q", errText, tt.wantErrText)
			}
			if tt.status.Err() == nil {
				t.Errorf("Err() = nil, want error")
			}
		})
	}
}

func TestNackReasonString(t *testing.T) {
	if got := NackDataOutOfRange.String(); got != "Data out of range" {
		t.Errorf("String() = %q", got)
	}
	// unknown codes render as hex rather than panicking
	if got := NackReason(0x1234).String(); !strings.Contains(got, "0x1234") {
		t.Errorf("unknown reason = %q, want hex rendering", got)
	}
}
