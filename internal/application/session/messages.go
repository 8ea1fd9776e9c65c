package session

import (
	"time"

	"github.com/loyalty/backend/internal/domain/receipt"
)

// State represents the UI-facing session state. Exactly one instance exists,
// owned by the Coordinator; idle is both the initial and per-cycle terminal state.
type State string

const (
	StateIdle         State = "idle"
	StateRegistration State = "registration"
	StateConfirmation State = "confirmation"
)

// Message is an action-keyed JSON payload exchanged with realtime peers
type Message map[string]any

// Inbound is a decoded peer message. Fields beyond Action are populated
// depending on the action.
type Inbound struct {
	Action      string         `json:"action"`
	Data        map[string]any `json:"data,omitempty"`
	Barcode     string         `json:"barcode,omitempty"`
	ReceiptData map[string]any `json:"receipt_data,omitempty"`
}

// Inbound actions understood by the coordinator. Anything else is ignored.
const (
	ActionSubmitCustomerForm = "submit_customer_form"
	ActionResetToIdle        = "reset_to_idle"
	ActionHeartbeat          = "heartbeat"
	ActionStartRegistration  = "start_registration"
	ActionCustomerScanned    = "customer_scanned"
	ActionReceiptProcessed   = "receipt_processed"
)

func setStateMessage(state State) Message {
	return Message{
		"action":    "set_state",
		"state":     string(state),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func registrationFormMessage(timeout time.Duration) Message {
	return Message{
		"action":  "show_registration_form",
		"fields":  []string{"name", "email", "phone"},
		"title":   "New Customer Registration",
		"timeout": int(timeout.Seconds()),
	}
}

func confirmationMessage(message string, autoReset time.Duration) Message {
	return Message{
		"action":     "show_confirmation",
		"message":    message,
		"type":       "success",
		"auto_reset": int(autoReset.Seconds()),
	}
}

func errorMessage(message string, autoReset time.Duration) Message {
	return Message{
		"action":     "show_error",
		"message":    message,
		"auto_reset": int(autoReset.Seconds()),
	}
}

func customerInfoMessage(barcode string, autoReset time.Duration) Message {
	return Message{
		"action":     "show_customer_info",
		"barcode":    barcode,
		"message":    "Customer scanned - processing...",
		"auto_reset": int(autoReset.Seconds()),
	}
}

func purchaseCompleteMessage(record receipt.Record, pointsAwarded int, autoReset time.Duration) Message {
	return Message{
		"action":         "show_purchase_complete",
		"receipt_data":   record,
		"points_awarded": pointsAwarded,
		"auto_reset":     int(autoReset.Seconds()),
	}
}

func heartbeatAckMessage() Message {
	return Message{"action": "heartbeat_ack"}
}

func systemStatusMessage(status map[string]any) Message {
	return Message{
		"action":    "system_status",
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
