package oracle

import "strings"

var finishedSynonyms = []string{"complete", "finish", "final", "ended"}

// NormalizeStatus folds a free-text status into one of the two canonical
// values. Anything that does not read as finished counts as ongoing.
func NormalizeStatus(status string) string {
	s := strings.ToLower(status)
	for _, synonym := range finishedSynonyms {
		if strings.Contains(s, synonym) {
			return "Completed"
		}
	}
	return "On Going"
}
