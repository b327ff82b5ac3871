// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// Phase identifies a stage of the federal expenditure lifecycle as encoded
// by the Portal da Transparência (fase parameter and field).
type Phase int

// Expenditure lifecycle phases.
const (
	// PhaseCommitment (empenho) reserves budget for a future expense.
	PhaseCommitment Phase = 1
	// PhaseSettlement (liquidação) confirms delivery of the good or service.
	PhaseSettlement Phase = 2
	// PhasePayment (pagamento) disburses the funds.
	PhasePayment Phase = 3
)

// AllPhases lists the lifecycle phases in order.
var AllPhases = []Phase{PhaseCommitment, PhaseSettlement, PhasePayment}

// Valid reports whether p is one of the three lifecycle phases.
func (p Phase) Valid() bool {
	return p >= PhaseCommitment && p <= PhasePayment
}

func (p Phase) String() string {
	switch p {
	case PhaseCommitment:
		return "commitment"
	case PhaseSettlement:
		return "settlement"
	case PhasePayment:
		return "payment"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// SheetName returns the portal's Portuguese name for the phase, used as the
// sheet title in extraction workbooks.
func (p Phase) SheetName() string {
	switch p {
	case PhaseCommitment:
		return "Empenhos"
	case PhaseSettlement:
		return "Liquidações"
	case PhasePayment:
		return "Pagamentos"
	default:
		return fmt.Sprintf("Fase %d", int(p))
	}
}
