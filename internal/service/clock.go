package service

import "time"

// nowFunc lets tests pin the decision timestamp.
type nowFunc func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
