package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
}

// force timestamps into the storefront's market timezone so observation
// times don't shift around depending on where the timer that invokes us
// happens to be hosted
func Now() time.Time {
	return time.Now().In(Location)
}
