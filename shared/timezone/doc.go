// Package timezone pins every timestamp the service produces to one
// application timezone, so stay windows parsed from CLI arguments and
// audit stamps written to the database always agree.
//
// Usage:
//
//	now := timezone.Now()                                // current time in app timezone
//	from, err := timezone.Parse(constant.DateOnly, arg)  // CLI date argument
//	local := timezone.ToAppTime(record.StartDate)        // normalize upstream times
//
// The timezone comes from the APP_TIMEZONE environment variable and is
// loaded when the package is imported. Use standard IANA names only
// ("UTC", "America/Chicago"); the default is UTC.
package timezone
