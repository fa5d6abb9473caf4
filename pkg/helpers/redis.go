package helpers

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// KeyMentorModePref is the cached mentor-mode preference for a user. Cleared
// by the role engine when the account commits to the student role.
func KeyMentorModePref(userID string) string {
	return "pref:mentor_mode:" + userID
}

// KeyStudentModePref is the student-side counterpart.
func KeyStudentModePref(userID string) string {
	return "pref:student_mode:" + userID
}
