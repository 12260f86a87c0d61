package api

import "time"

type UserRole string

const (
	RoleLearner   UserRole = "learner"
	RoleVolunteer UserRole = "volunteer"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusRejected UserStatus = "rejected"
)

// User is the server's view of an account. The client holds a read-mostly
// copy tied to the session lifetime.
type User struct {
	ID                    int64      `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Role                  UserRole   `json:"role"`
	Status                UserStatus `json:"status"`
	Phone                 string     `json:"phone,omitempty"`
	ProfileImage          string     `json:"profile_image,omitempty"`
	LocationCity          string     `json:"location_city,omitempty"`
	LocationState         string     `json:"location_state,omitempty"`
	Bio                   string     `json:"bio,omitempty"`
	IsOnlineAvailable     bool       `json:"is_online_available"`
	IsPresencialAvailable bool       `json:"is_presencial_available"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
	LastLogin             *time.Time `json:"last_login,omitempty"`
}

// Token is the payload returned by login and signup.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type SignupRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}

// UserUpdate is a partial patch; nil fields are left untouched server-side.
type UserUpdate struct {
	Name                  *string `json:"name,omitempty"`
	Email                 *string `json:"email,omitempty"`
	Phone                 *string `json:"phone,omitempty"`
	LocationCity          *string `json:"location_city,omitempty"`
	LocationState         *string `json:"location_state,omitempty"`
	Bio                   *string `json:"bio,omitempty"`
	ProfileImage          *string `json:"profile_image,omitempty"`
	IsOnlineAvailable     *bool   `json:"is_online_available,omitempty"`
	IsPresencialAvailable *bool   `json:"is_presencial_available,omitempty"`
}

// Subject is read-only reference data used to label topics and lessons.
type Subject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
}

type ForumTopic struct {
	ID           int64      `json:"id"`
	SubjectID    int64      `json:"subject_id"`
	UserID       int64      `json:"user_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	IsResolved   bool       `json:"is_resolved"`
	ViewsCount   int        `json:"views_count"`
	RepliesCount int        `json:"replies_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	AuthorName   string     `json:"author_name"`
}

type ForumReply struct {
	ID            int64      `json:"id"`
	TopicID       int64      `json:"topic_id"`
	UserID        int64      `json:"user_id"`
	Content       string     `json:"content"`
	IsAccepted    bool       `json:"is_accepted"`
	LikesCount    int        `json:"likes_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	AuthorName    string     `json:"author_name"`
	ParentReplyID *int64     `json:"parent_reply_id,omitempty"`
}

type TopicCreate struct {
	SubjectID int64  `json:"subject_id"`
	UserID    int64  `json:"user_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

type TopicUpdate struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	IsResolved *bool   `json:"is_resolved,omitempty"`
}

type ReplyCreate struct {
	TopicID       int64  `json:"topic_id"`
	UserID        int64  `json:"user_id"`
	Content       string `json:"content"`
	ParentReplyID *int64 `json:"parent_reply_id,omitempty"`
}

type ReplyUpdate struct {
	Content *string `json:"content,omitempty"`
}

type NewsType string

const (
	NewsTypeNews         NewsType = "news"
	NewsTypeEvent        NewsType = "event"
	NewsTypeCampaign     NewsType = "campaign"
	NewsTypeAnnouncement NewsType = "announcement"
)

type News struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	NewsType    NewsType   `json:"news_type"`
	Author      string     `json:"author,omitempty"`
	IsFeatured  bool       `json:"is_featured"`
	IsActive    bool       `json:"is_active"`
	PublishedAt time.Time  `json:"published_at"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	ViewsCount  int        `json:"views_count"`
}

type NewsCreate struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	NewsType   NewsType   `json:"news_type"`
	Author     string     `json:"author,omitempty"`
	IsFeatured bool       `json:"is_featured,omitempty"`
	EventDate  *time.Time `json:"event_date,omitempty"`
}

type PartnerLocation struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PartnerType string `json:"partner_type"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type PublishedLesson struct {
	ID          int64      `json:"id"`
	VolunteerID int64      `json:"volunteer_id"`
	SubjectID   int64      `json:"subject_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	MediaURL    string     `json:"media_url,omitempty"`
	MediaType   string     `json:"media_type,omitempty"`
	ViewsCount  int        `json:"views_count"`
	LikesCount  int        `json:"likes_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type LessonUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MediaFile references a local file to attach to a published lesson,
// as handed back by the device document/image pickers.
type MediaFile struct {
	Path        string
	Name        string
	ContentType string
}
