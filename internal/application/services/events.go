package services

// ChangeOp names the mutation behind a ChangeEvent
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is published to the subject after a mutation committed
type ChangeEvent struct {
	Resource string
	Op       ChangeOp
	ID       int64
	Entity   any
}
