package payment

// ValidationError is a single field-level rule violation.
type ValidationError struct {
	Field   string
	Message string
}

// Outcome is the result of one processing attempt: either Rejected or Done.
type Outcome interface {
	ID() string
	PaymentStatus() Status
	outcome()
}

type Rejected struct {
	PaymentID string
	Errors    []ValidationError
}

func (r Rejected) ID() string            { return r.PaymentID }
func (r Rejected) PaymentStatus() Status { return StatusRejected }
func (Rejected) outcome()                {}

type Done struct {
	PaymentID string
	Status    Status
	Record    Record
}

func (d Done) ID() string            { return d.PaymentID }
func (d Done) PaymentStatus() Status { return d.Status }
func (Done) outcome()                {}
