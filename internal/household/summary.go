package household

import (
	"strings"
	"time"
	"unicode"

	"github.com/lojf/campreg/internal/models"
)

// GroupByFamily buckets members by family id, keeping input order inside each
// bucket.
func GroupByFamily(members []models.Individual) map[uint][]models.Individual {
	out := make(map[uint][]models.Individual)
	for _, m := range members {
		out[m.FamilyID] = append(out[m.FamilyID], m)
	}
	return out
}

// HasInfant reports whether any member with a usable birth date is under two.
func HasInfant(members []models.Individual, now time.Time) bool {
	for _, m := range members {
		if _, ok := ParseDOB(m.DOB); ok && Age(m.DOB, now) < 2 {
			return true
		}
	}
	return false
}

// Summary is one row of a family list.
type Summary struct {
	Family      models.Family       `json:"family"`
	Head        *models.Individual  `json:"head,omitempty"`
	HeadName    string              `json:"head_name"`
	HeadNID     string              `json:"head_nid"`
	MemberCount int                 `json:"member_count"`
	Members     []models.Individual `json:"-"`
}

// Summaries builds list rows for families in the given order.
func Summaries(families []models.Family, members []models.Individual) []Summary {
	byFamily := GroupByFamily(members)
	out := make([]Summary, 0, len(families))
	for _, f := range families {
		ms := byFamily[f.ID]
		s := Summary{Family: f, HeadName: "-", HeadNID: "-", MemberCount: len(ms), Members: ms}
		if h, ok := ResolveHead(ms); ok {
			s.Head = &h
			s.HeadName = h.Name
			if h.NID != "" {
				s.HeadNID = h.NID
			}
		}
		out = append(out, s)
	}
	return out
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Search filters summaries by head name, any member name or NID, family
// number, or contact digits. An empty query keeps everything.
func Search(list []Summary, query string) []Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	digits := onlyDigits(q)

	out := make([]Summary, 0, len(list))
	for _, s := range list {
		if matches(s, q, digits) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s Summary, q, digits string) bool {
	if strings.Contains(strings.ToLower(s.HeadName), q) || strings.EqualFold(s.Family.FamilyNumber, q) {
		return true
	}
	for _, m := range s.Members {
		if strings.Contains(strings.ToLower(m.Name), q) || (m.NID != "" && strings.Contains(m.NID, q)) {
			return true
		}
	}
	if len(digits) >= 4 {
		for _, phone := range []string{s.Family.Contact, s.Family.AlternativeMobile} {
			if strings.Contains(onlyDigits(phone), digits) {
				return true
			}
		}
	}
	return false
}
