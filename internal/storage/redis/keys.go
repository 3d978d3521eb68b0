package redis

import (
	"fmt"

	"github.com/mcoot/matchqueue/internal/model"
)

// Key prefix for all matchqueue data
const keyPrefix = "mmq"

// accountKey returns the Redis key for an Account
func accountKey(username model.Username) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}
