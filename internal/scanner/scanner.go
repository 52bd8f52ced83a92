// Package scanner turns a remote directory-listing document into the set
// of log descriptors for the current UTC day.
package scanner

import (
	"context"
	"regexp"
	"time"

	"github.com/embertail-io/embertail/internal/models"
)

// Suffixes of the two remote log categories.
const (
	LogSuffix      = ".log"
	ProfilerSuffix = ".csv"
)

// profilerCategory is the secondary listing endpoint for profiler CSVs.
const profilerCategory = "profiler"

// rowPattern is the extraction contract against the remote listing
// format: an anchor tag followed by a date column and a size column.
// Treated as versioned; changes to the server's listing layout must be
// reflected here and in the fixture tests together.
var rowPattern = regexp.MustCompile(`(?m)<a href="([^"?/]+)"[^>]*>[^<]*</a>\s+(\S+\s+\S+)\s+(\S+)\s*$`)

// stampFormat is the 8-digit rotation date embedded in log file names
// immediately before the suffix, e.g. error-blade1-20231113.log.
const stampFormat = "20060102"

// Lister fetches a listing document for a profile.
type Lister interface {
	FetchList(ctx context.Context, profile *models.Profile, category string) (string, error)
}

// Discover fetches the listing for the given suffix and returns the
// descriptors whose embedded rotation date equals the current UTC day.
// The result is neither sorted nor deduplicated.
func Discover(ctx context.Context, lister Lister, profile *models.Profile, suffix string, now time.Time, debug bool) ([]models.LogDescriptor, error) {
	category := ""
	if suffix == ProfilerSuffix {
		category = profilerCategory
	}
	doc, err := lister.FetchList(ctx, profile, category)
	if err != nil {
		return nil, err
	}
	return Extract(doc, suffix, now, debug), nil
}

// Extract applies the row pattern to a listing document. Split out from
// Discover so the contract can be exercised against fixtures.
func Extract(doc, suffix string, now time.Time, debug bool) []models.LogDescriptor {
	today := now.UTC().Truncate(24 * time.Hour)
	stampPattern := regexp.MustCompile(`-(\d{8})` + regexp.QuoteMeta(suffix) + `$`)

	var found []models.LogDescriptor
	for _, row := range rowPattern.FindAllStringSubmatch(doc, -1) {
		name, listedAt, sizeText := row[1], row[2], row[3]

		stamp := stampPattern.FindStringSubmatch(name)
		if stamp == nil {
			// Name does not carry the expected date-suffix tail.
			continue
		}
		rotation, err := time.ParseInLocation(stampFormat, stamp[1], time.UTC)
		if err != nil {
			continue
		}
		if !rotation.Equal(today) {
			continue
		}
		found = append(found, models.LogDescriptor{
			Name:         name,
			SizeText:     sizeText,
			ListedAt:     listedAt,
			RotationDate: rotation,
			Offset:       models.OffsetUnread,
			Debug:        debug,
		})
	}
	return found
}
