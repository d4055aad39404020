package rated

// Item models a user's rating of a title.
type Item struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64   `gorm:"column:user_id;not null;index:idx_rated_user_title,unique,priority:1"`
	TitleID      int     `gorm:"column:title_id;not null;index:idx_rated_user_title,unique,priority:2"`
	Name         string  `gorm:"column:name;size:320;not null"`
	Watched      bool    `gorm:"column:watched;not null;default:true"`
	Rating       float64 `gorm:"column:rating;not null"`
	PlotOverview string  `gorm:"column:plot_overview;type:text"`
	Year         int     `gorm:"column:year"`
	Type         string  `gorm:"column:type;size:32"`
	GenreName    string  `gorm:"column:genre_name;size:190"`
	Poster       string  `gorm:"column:poster;size:512"`
}

// TableName exposes the table backing rated items.
func (Item) TableName() string {
	return "rated"
}

// ItemRequest carries the client-supplied fields for rating a title. Pointer
// fields distinguish "absent" from zero on update.
type ItemRequest struct {
	TitleID      int
	Name         string
	Rating       float64
	Watched      *bool
	PlotOverview *string
	Year         *int
	Type         *string
	GenreName    *string
	Poster       *string
}
