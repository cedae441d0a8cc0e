package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// PageParams are the offset pagination query parameters shared by list endpoints.
// From is a row offset, Size the maximum number of rows returned.
type PageParams struct {
	From int  `form:"from,default=0" binding:"min=0"`
	Size *int `form:"size" binding:"omitempty,min=1,max=100"`
}

// Window returns the row offset and limit, using defaultSize when size was not sent.
func (p PageParams) Window(defaultSize int) (offset, limit int) {
	if p.Size == nil {
		return p.From, defaultSize
	}
	return p.From, *p.Size
}
