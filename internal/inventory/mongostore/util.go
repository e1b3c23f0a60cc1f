package mongostore

import "strconv"

// Mongo field names can't be numeric-looking in every driver configuration
// consistently, so item ids are stored as decimal string keys.
func stringToUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func uint32ToString(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}
