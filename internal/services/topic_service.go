package services

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pollyhq/pollycoach/internal/models"
)

// defaultTopics is the built-in catalog, used when no topics file is
// configured or the file cannot be read.
var defaultTopics = []models.Topic{
	{ID: 1, Topic: "Social media does more harm than good to society", Category: "Technology", Difficulty: "medium"},
	{ID: 2, Topic: "Remote work should be the default for all office jobs", Category: "Work & Career", Difficulty: "easy"},
	{ID: 3, Topic: "Artificial intelligence will create more jobs than it destroys", Category: "Technology", Difficulty: "hard"},
	{ID: 4, Topic: "College education is not worth the cost anymore", Category: "Education", Difficulty: "medium"},
	{ID: 5, Topic: "Video games are an effective educational tool", Category: "Education", Difficulty: "easy"},
	{ID: 6, Topic: "Climate change is the most pressing issue of our generation", Category: "Environment", Difficulty: "medium"},
	{ID: 7, Topic: "Universal basic income would benefit society", Category: "Economics", Difficulty: "hard"},
	{ID: 8, Topic: "Celebrities have too much influence on society", Category: "Society", Difficulty: "easy"},
	{ID: 9, Topic: "Traditional news media is becoming obsolete", Category: "Media", Difficulty: "medium"},
	{ID: 10, Topic: "Space exploration is a waste of resources", Category: "Science", Difficulty: "medium"},
	{ID: 11, Topic: "Standardized testing does not accurately measure intelligence", Category: "Education", Difficulty: "easy"},
	{ID: 12, Topic: "Cryptocurrency will replace traditional banking", Category: "Technology", Difficulty: "hard"},
	{ID: 13, Topic: "Fast fashion is destroying the environment", Category: "Environment", Difficulty: "easy"},
	{ID: 14, Topic: "Professional athletes are overpaid", Category: "Sports", Difficulty: "medium"},
	{ID: 15, Topic: "Self-driving cars will make roads safer", Category: "Technology", Difficulty: "medium"},
}

// TopicService hands out practice prompts, optionally filtered by
// difficulty and category.
type TopicService struct {
	topics []models.Topic
}

// NewTopicService loads the catalog from path when set, falling back to the
// built-in topics on any problem.
func NewTopicService(path string, log *logrus.Logger) *TopicService {
	topics := defaultTopics

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("topics file unreadable, using defaults")
		} else {
			var loaded []models.Topic
			if err := json.Unmarshal(data, &loaded); err != nil || len(loaded) == 0 {
				log.WithError(err).WithField("path", path).Warn("topics file invalid, using defaults")
			} else {
				topics = loaded
			}
		}
	}

	return &TopicService{topics: topics}
}

// Random picks a topic matching the filters; when nothing matches, the
// filters are ignored rather than failing the request.
func (s *TopicService) Random(difficulty, category string) models.Topic {
	filtered := make([]models.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		if difficulty != "" && t.Difficulty != difficulty {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 {
		filtered = s.topics
	}
	return filtered[rand.IntN(len(filtered))]
}

// ByID returns the topic with the given id, or a random one if unknown.
func (s *TopicService) ByID(id int) models.Topic {
	for _, t := range s.topics {
		if t.ID == id {
			return t
		}
	}
	return s.Random("", "")
}

// Categories lists the distinct categories in the catalog, sorted.
func (s *TopicService) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.topics {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}
