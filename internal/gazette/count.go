package gazette

import "strings"

// CountDecrees counts the naturalization decrees listed in the page-one
// summary: fragments after the decree section heading, stopping at the
// announcements heading when the issue has one.
func CountDecrees(firstPage []string, markers Markers) int {
	start := -1
	stop := len(firstPage)
	for i, fragment := range firstPage {
		text := whitespaceRun.ReplaceAllString(fragment, " ")
		if start < 0 && strings.Contains(text, markers.DecreeSection) {
			start = i
			continue
		}
		if start >= 0 && strings.Contains(text, markers.Announcements) {
			stop = i
			break
		}
	}
	if start < 0 {
		return 0
	}

	count := 0
	for _, fragment := range firstPage[start+1 : stop] {
		if strings.Contains(whitespaceRun.ReplaceAllString(fragment, " "), markers.Naturalization) {
			count++
		}
	}
	return count
}
