package sdfat

import "time"

// parseDate decodes a FAT date stamp: bits 0-4 day of month, bits 5-8 month,
// bits 9-15 years since 1980. Day or month 0 is unspecified in the format,
// in that case time.Time{} is returned so time.Time.IsZero() can be used.
func parseDate(stamp uint16) time.Time {
	day := stamp & 0x1F
	month := stamp & 0x1E0 >> 5
	year := stamp & 0xFE00 >> 9

	if day == 0 || month == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
}

// parseTime decodes a FAT time stamp: bits 0-4 seconds divided by two,
// bits 5-10 minutes, bits 11-15 hours. The result always carries the date
// January 1 of year 1. Out-of-range stamps clamp to 23:59:59 instead of
// rolling over into a second day.
func parseTime(stamp uint16) time.Time {
	seconds := int(stamp&0x1F) * 2
	minutes := stamp & 0x7E0 >> 5
	hours := stamp & 0xF800 >> 11

	t := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)
	if t.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}
	return t
}
