package services

import "strings"

// TitleCompliant reports whether a post title carries at least one of the
// required tags. Matching is a case-insensitive substring test, so a required
// tag "[News]" is satisfied by "news" appearing anywhere in the title. That is
// deliberately lenient: authors write tags in many shapes and a false pass is
// cheaper than a wrongly removed post.
func TitleCompliant(title string, requiredTags []string) bool {
	lower := strings.ToLower(title)
	for _, tag := range requiredTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
