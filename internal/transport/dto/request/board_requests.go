package request

type CreateBoardRequest struct {
	ActorId     string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateBoardRequest struct {
	ActorId     string  `json:"-"`
	BoardId     string  `json:"-"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	ActorId string `json:"-"`
	BoardId string `json:"-"`
	UserId  string `json:"userId"`
}

type CreateColumnRequest struct {
	ActorId string `json:"-"`
	BoardId string `json:"-"`
	Name    string `json:"name"`
}

type UpdateColumnRequest struct {
	ActorId  string  `json:"-"`
	BoardId  string  `json:"-"`
	ColumnId string  `json:"-"`
	Name     *string `json:"name"`
	Order    *int    `json:"order"`
}

type ReorderColumnsRequest struct {
	ActorId   string   `json:"-"`
	BoardId   string   `json:"-"`
	ColumnIds []string `json:"columnIds"`
}
