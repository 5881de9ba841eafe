package ptr

import "time"

// String return a pointer to the input value
func String(value string) *string {
	return &value
}

func Int(value int) *int {
	return &value
}

func Int64(value int64) *int64 {
	return &value
}

func Bool(value bool) *bool {
	return &value
}

func Time(value time.Time) *time.Time {
	return &value
}
