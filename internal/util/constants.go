package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 好友流程的提示语，客户端以 toast 形式展示，不算错误
const (
	MsgFriendRequestSent     = "Friend Request Sent."
	MsgAlreadyHaveRequest    = "Already Have Friend Request"
	MsgAlreadyFriend         = "You Are Already Friend."
	MsgEmailNotFound         = "Email not found"
	MsgFriendRequestAccepted = "Friend Request Accepted"
	MsgFriendRequestCanceled = "Friend Request Canceled"
	MsgBlockOpened           = "User Block Opened And Accept As Friend"
	MsgBlockedByUser         = "You Are Blocked by User"
)

// 头像上传相关常量
const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
