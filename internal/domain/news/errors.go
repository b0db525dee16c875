package news

import "errors"

var ErrPostNotFound = errors.New("news post not found")
