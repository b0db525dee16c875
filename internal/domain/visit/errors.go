package visit

import "errors"

var ErrVisitNotFound = errors.New("visit report not found")
