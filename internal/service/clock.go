package service

import "time"

// now is replaced in tests
var now = time.Now
