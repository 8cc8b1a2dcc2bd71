package entities

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`
	Password     string `gorm:"not null" json:"-"`
	AvatarURL    string `json:"avatar,omitempty"`
	TokenVersion int    `gorm:"not null;default:0" json:"-"`
	Timestamp
}

// Subscribe is a follow edge: UserID follows SubscriptionID.
type Subscribe struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_subscribe_pair;check:chk_subscribe_not_self,user_id <> subscription_id" json:"user_id"`
	SubscriptionID uint `gorm:"not null;uniqueIndex:idx_subscribe_pair;index" json:"subscription_id"`

	User         *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Subscription *User `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}
