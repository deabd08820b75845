package dto

type CreateBoardDTO struct {
	Id          string
	Name        string
	Description string
	CreatorId   string
	Columns     []*CreateColumnDTO
}

type UpdateBoardDTO struct {
	BoardId     string
	Name        *string
	Description *string
}

type CreateColumnDTO struct {
	Id         string
	BoardId    string
	Name       string
	MaxColumns int
}

type UpdateColumnDTO struct {
	BoardId  string
	ColumnId string
	Name     *string
	Order    *int
}

type ReorderColumnsDTO struct {
	BoardId   string
	ColumnIds []string
}
