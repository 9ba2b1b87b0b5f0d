package controller

import "github.com/sandeepkv93/todosync/internal/model"

type SubmitOp string

const (
	SubmitCreate SubmitOp = "create"
	SubmitUpdate SubmitOp = "update"
)

// RefreshedMsg carries a fetched collection. Seq orders it against other
// refreshes issued by the same controller.
type RefreshedMsg struct {
	Seq   uint64
	Items []model.Item
}

type RefreshFailedMsg struct {
	Seq uint64
	Err error
}

// SubmittedMsg reports a successful create or update. Draft is the item as
// it was handed to SubmitDraft.
type SubmittedMsg struct {
	Op    SubmitOp
	Draft model.Item
	Item  model.Item
}

type SubmitFailedMsg struct {
	Op    SubmitOp
	Draft model.Item
	Err   error
}

type DeletedMsg struct {
	ID string
}

type DeleteFailedMsg struct {
	ID  string
	Err error
}
