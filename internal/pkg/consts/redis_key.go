package consts

const (
	TokenBlacklistKey = "auth:blacklist:"
	UserFollowingKey  = "user:following:"
	UserFollowingVer  = "user:following:ver:"
	UserSimpleInfoKey = "user:simple:"
	MediaTempKey      = "media:temp"
	PopularTagsKey    = "tag:popular"
)

const (
	CronJobLock = "lock:cron:"
)
