package datacube

// Response is the list envelope shared by every statistics endpoint.
// IsDelay reports that the platform has not finished aggregating the range.
type Response[T any] struct {
	List    []T  `json:"list"`
	IsDelay bool `json:"is_delay"`
}

type ReadUserSource struct {
	UserCount int    `json:"user_count"`
	SceneDesc string `json:"scene_desc"`
}

// ArticleRead is one day of read statistics for a message.
type ArticleRead struct {
	RefDate string `json:"ref_date"`
	MsgID   string `json:"msgid"`
	Detail  struct {
		ReadUser       int              `json:"read_user"`
		ReadUserSource []ReadUserSource `json:"read_user_source"`
	} `json:"detail"`
}

// ArticleShare is one day of share statistics for a message.
type ArticleShare struct {
	RefDate string `json:"ref_date"`
	MsgID   string `json:"msgid"`
	Detail  struct {
		ShareUser int `json:"share_user"`
	} `json:"detail"`
}

type SummaryDetail struct {
	ReadUser            int              `json:"read_user"`
	ReadUserSource      []ReadUserSource `json:"read_user_source"`
	ShareUser           int              `json:"share_user"`
	ZaikanUser          int              `json:"zaikan_user"`
	LikeUser            int              `json:"like_user"`
	CommentCount        int              `json:"comment_count"`
	CollectionUser      int              `json:"collection_user"`
	RedirectOriPageUser int              `json:"redirect_ori_page_user"`
	SendPageCount       int              `json:"send_page_count"`
}

// BizSummary is the account-wide overview for one day.
type BizSummary struct {
	RefDate string        `json:"ref_date"`
	Detail  SummaryDetail `json:"detail"`
}

type JumpPosition struct {
	Position int     `json:"position"`
	Rate     float64 `json:"rate"`
}

type StatDetail struct {
	StatDate          string           `json:"stat_date"`
	ReadUser          int              `json:"read_user"`
	ReadUserSource    []ReadUserSource `json:"read_user_source"`
	ShareUser         int              `json:"share_user"`
	ZaikanUser        int              `json:"zaikan_user"`
	LikeUser          int              `json:"like_user"`
	CommentCount      int              `json:"comment_count"`
	CollectionUser    int              `json:"collection_user"`
	PraiseMoney       int              `json:"praise_money"`
	ReadSubscribeUser int              `json:"read_subscribe_user"`
	ReadDeliveryRate  float64          `json:"read_delivery_rate"`
	ReadFinishRate    float64          `json:"read_finish_rate"`
	ReadAvgActiveTime float64          `json:"read_avg_activetime"`
	ReadJumpPosition  []JumpPosition   `json:"read_jump_position"`
}

// ArticleTotalDetail carries per-day detail for one published message.
type ArticleTotalDetail struct {
	RefDate     string       `json:"ref_date"`
	MsgID       string       `json:"msgid"`
	PublishType int          `json:"publish_type"`
	DetailList  []StatDetail `json:"detail_list"`
}
