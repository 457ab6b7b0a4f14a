package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

// Counts is a histogram that remembers the order in which keys first appeared.
type Counts struct {
	keys   []string
	counts map[string]int
}

func newCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

func (c *Counts) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// Keys returns the keys in first-seen order.
func (c *Counts) Keys() []string {
	if c == nil {
		return nil
	}
	return c.keys
}

// Get returns the count for key.
func (c *Counts) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

// Len is the number of distinct keys.
func (c *Counts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Max returns the key with the highest count; ties go to the key seen first.
func (c *Counts) Max() string {
	best, bestN := "", 0
	for _, k := range c.Keys() {
		if n := c.counts[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best
}

// MarshalJSON writes the histogram as an object in first-seen key order.
func (c *Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.counts[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary is the aggregate view of a record set.
type Summary struct {
	TotalMessages    int       `json:"totalMessages"`
	UniqueSenders    int       `json:"uniqueSenders"`
	TotalWords       int       `json:"totalWords"`
	TotalCharacters  int       `json:"totalCharacters"`
	AvgMessageLength int       `json:"avgMessageLength"`
	DateRange        DateRange `json:"dateRange"`
	MessagesBySender *Counts   `json:"messagesBySender"`
	MessagesByDay    *Counts   `json:"messagesByDay"`
	MessagesByHour   *Counts   `json:"messagesByHour"`
	MostActiveSender string    `json:"mostActiveSender"`
	MostActiveDay    string    `json:"mostActiveDay"`
	MostActiveHour   string    `json:"mostActiveHour"`
	TotalMedia       int       `json:"totalMedia"`
}

// Compute reduces records into a Summary in a single pass.
func Compute(records []parse.Record) Summary {
	s := Summary{
		MessagesBySender: newCounts(),
		MessagesByDay:    newCounts(),
		MessagesByHour:   newCounts(),
	}

	for _, r := range records {
		s.TotalMessages++
		s.TotalWords += r.WordCount
		s.TotalCharacters += r.MessageLength
		s.TotalMedia += r.MediaCount

		if r.Sender != "" {
			s.MessagesBySender.add(r.Sender)
		}
		if r.Date != "" {
			if s.DateRange.Start == "" || r.Date < s.DateRange.Start {
				s.DateRange.Start = r.Date
			}
			if r.Date > s.DateRange.End {
				s.DateRange.End = r.Date
			}
		}
		if r.DayOfWeek != "" {
			s.MessagesByDay.add(r.DayOfWeek)
		}
		if r.Hour != "" {
			s.MessagesByHour.add(r.Hour)
		}
	}

	s.UniqueSenders = s.MessagesBySender.Len()
	if s.TotalMessages > 0 {
		s.AvgMessageLength = int(math.Round(float64(s.TotalCharacters) / float64(s.TotalMessages)))
	}
	s.MostActiveSender = s.MessagesBySender.Max()
	s.MostActiveDay = s.MessagesByDay.Max()
	s.MostActiveHour = s.MessagesByHour.Max()
	return s
}
