package api

// AuthResponse is returned by /login and /signup.
type AuthResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Mail     string `json:"mail"`
	APIToken string `json:"api_token"`
	AvatarID string `json:"avatar_id"`
}

// Me is the authenticated user's account record.
type Me struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Mail        string `json:"mail"`
	DateOfBirth string `json:"date_of_birth"`
	AvatarID    string `json:"avatar_id"`
}

// User is a public user summary from /user and /user/batch.
type User struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Mail        string `json:"mail"`
	DateOfBirth string `json:"date_of_birth"`
	AvatarID    string `json:"avatar_id"`
}

// Visibility controls who can see a shared profile field.
type Visibility string

const (
	VisibilityNobody   Visibility = "nobody"
	VisibilityFriends  Visibility = "friends"
	VisibilityEveryone Visibility = "everyone"
)

// Profile is the authenticated user's own profile with sharing settings.
type Profile struct {
	Bio              string     `json:"bio"`
	Location         string     `json:"location"`
	Website          string     `json:"website"`
	Phone            string     `json:"phone"`
	ShareLocation    Visibility `json:"share_location"`
	ShareMail        Visibility `json:"share_mail"`
	SharePhone       Visibility `json:"share_phone"`
	ShareDateOfBirth Visibility `json:"share_date_of_birth"`
}

// PublicProfile is another user's profile as visible to the caller. Fields
// hidden by the owner's sharing settings come back empty.
type PublicProfile struct {
	UserID      int64  `json:"user_id"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Phone       string `json:"phone"`
	Mail        string `json:"mail"`
	DateOfBirth string `json:"date_of_birth"`
}

// Conversation is one row of the conversation list. Ordering and unread
// counts are server-computed; the client refreshes the list wholesale.
type Conversation struct {
	ID            int64  `json:"id"`
	OtherUserID   int64  `json:"other_user_id"`
	OtherUsername string `json:"other_username"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_at"`
	UnreadCount   int    `json:"unread_count"`
}

// Message is one message in a conversation thread.
type Message struct {
	ID             int64   `json:"id"`
	ConversationID int64   `json:"conversation_id"`
	SenderID       int64   `json:"sender_id"`
	Content        string  `json:"content"`
	CreatedAt      string  `json:"created_at"`
	IsRead         int     `json:"is_read"`
	MediaIDs       []int64 `json:"media_ids"`
}

// FriendRequest is a pending inbound friend request.
type FriendRequest struct {
	SenderID  int64  `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

// MediaMeta describes an uploaded attachment.
type MediaMeta struct {
	MediaID  int64  `json:"media_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}
