package inventory

// Operation names recorded against ledger mutations.
type Operation string

const (
	OperationReserve Operation = "reserve"
	OperationRelease Operation = "release"
	OperationDeduct  Operation = "deduct"
	OperationAdjust  Operation = "adjust"
)

func (o Operation) String() string {
	return string(o)
}
