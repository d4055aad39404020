package watchlist

// Item models a title saved to a user's watchlist.
type Item struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64  `gorm:"column:user_id;not null;index:idx_watchlist_user_title,priority:1"`
	TitleID      int    `gorm:"column:title_id;not null;index:idx_watchlist_user_title,priority:2"`
	Name         string `gorm:"column:name;size:320;not null"`
	Watched      bool   `gorm:"column:watched;not null;default:false"`
	PlotOverview string `gorm:"column:plot_overview;type:text"`
	Year         int    `gorm:"column:year"`
	Type         string `gorm:"column:type;size:32"`
	GenreName    string `gorm:"column:genre_name;size:190"`
	Poster       string `gorm:"column:poster;size:512"`
}

// TableName exposes the table backing watchlist items.
func (Item) TableName() string {
	return "watchlist"
}

// ItemRequest carries the client-supplied fields for creating or updating an
// item. Pointer fields distinguish "absent" from zero on update.
type ItemRequest struct {
	TitleID      int
	Name         string
	Watched      *bool
	PlotOverview *string
	Year         *int
	Type         *string
	GenreName    *string
	Poster       *string
}
