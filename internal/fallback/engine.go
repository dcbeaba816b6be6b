// Package fallback produces deterministic canned replies when no language
// model provider is reachable. Classification is plain lower-cased substring
// matching over ordered rule tables; the first matching rule wins.
package fallback

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type Category string

const (
	CategoryStress     Category = "stress"
	CategoryAnxiety    Category = "anxiety"
	CategorySadness    Category = "sadness"
	CategoryDepression Category = "depression"
	CategorySleep      Category = "sleep"
	CategoryMeditation Category = "meditation"
	CategoryGreeting   Category = "greeting"
	CategoryGeneral    Category = "general"

	// Contributor FAQ is its own response domain, checked before the
	// support table and never mixed with it.
	CategoryAssignment     Category = "contributor-assignment"
	CategoryForking        Category = "contributor-forking"
	CategoryGoodFirstIssue Category = "contributor-good-first-issue"
	CategoryPullRequest    Category = "contributor-pull-request"
	CategoryLabels         Category = "contributor-labels"
	CategoryContributing   Category = "contributor-general"
)

type rule struct {
	category Category
	keywords []string
	reply    string
}

// contributorRules answer repository-workflow questions. Keywords are kept
// narrow ("assign", not "issue") so ordinary support messages never land here.
var contributorRules = []rule{
	{
		category: CategoryAssignment,
		keywords: []string{"assign"},
		reply: "To get an issue assigned, comment on the issue asking a maintainer to assign it to you. " +
			"Please wait for the assignment before starting work so two people don't build the same fix.",
	},
	{
		category: CategoryForking,
		keywords: []string{"fork"},
		reply: "Fork the repository with the Fork button on GitHub, clone your fork locally, and add the " +
			"original repo as the upstream remote. Create a feature branch for your change rather than committing to main.",
	},
	{
		category: CategoryGoodFirstIssue,
		keywords: []string{"good first issue", "first issue", "beginner"},
		reply: "Look for issues tagged \"good first issue\" — they are scoped for newcomers. Pick one that is " +
			"unassigned, ask for it in a comment, and read the linked context before you start.",
	},
	{
		category: CategoryPullRequest,
		keywords: []string{"pull request", "merge request"},
		reply: "Push your branch to your fork and open a pull request against the main branch. Reference the " +
			"issue number in the description, keep the change focused, and respond to review comments — a maintainer will merge once it's approved.",
	},
	{
		category: CategoryLabels,
		keywords: []string{"label"},
		reply: "Labels mark an issue's type and status: \"bug\", \"enhancement\", \"documentation\", " +
			"\"good first issue\", and \"help wanted\". Only maintainers can apply labels, but you can suggest one in a comment.",
	},
	{
		category: CategoryContributing,
		keywords: []string{"contribut", "open source"},
		reply: "Thanks for wanting to contribute! Start with the CONTRIBUTING.md in the repo: fork, branch, " +
			"make your change with tests, and open a pull request. Questions are welcome on the issue tracker.",
	},
}

// supportRules are evaluated in fixed priority order; wording is the
// product's published canned text and must not drift casually.
var supportRules = []rule{
	{
		category: CategoryStress,
		keywords: []string{"stress", "overwhelm"},
		reply: "I understand you're feeling stressed. Take a deep breath with me. Stress is temporary, and you " +
			"have the strength to overcome this. Consider talking to someone you trust or practicing mindfulness " +
			"techniques. Would you like to try our guided meditation?",
	},
	{
		category: CategoryAnxiety,
		keywords: []string{"anxious", "anxiety", "worry", "nervous"},
		reply: "Anxiety can feel overwhelming, but you're not alone. Try grounding yourself by naming 5 things " +
			"you can see, 4 you can touch, 3 you can hear, 2 you can smell, and 1 you can taste. This 5-4-3-2-1 " +
			"technique can help bring you to the present moment.",
	},
	{
		category: CategorySadness,
		keywords: []string{"sad", "down", "upset"},
		reply: "I hear that you're feeling sad, and that's completely valid. It's okay to feel this way. Remember " +
			"that feelings are temporary, and brighter days are ahead. Consider reaching out to a friend, family " +
			"member, or counselor for support.",
	},
	{
		category: CategoryDepression,
		keywords: []string{"depressed", "depression", "hopeless"},
		reply: "I'm concerned about how you're feeling. Depression is a real condition that many people face, and " +
			"you don't have to go through this alone. Please consider speaking with a mental health professional " +
			"who can provide proper support and guidance.",
	},
	{
		category: CategorySleep,
		keywords: []string{"sleep", "insomnia", "tired"},
		reply: "Sleep troubles can really impact how we feel. Try creating a relaxing bedtime routine: dim the " +
			"lights, avoid screens before bed, and perhaps listen to our sleep meditation sounds. Good sleep " +
			"hygiene can make a big difference.",
	},
	{
		category: CategoryMeditation,
		keywords: []string{"meditat", "mindful", "calm"},
		reply: "Meditation can be a wonderful tool for mental wellness. Even just 5 minutes a day can help reduce " +
			"stress and improve focus. Would you like to try our guided meditation feature?",
	},
	{
		category: CategoryGreeting,
		keywords: []string{"hello", "hi", "hey"},
		reply: "Hello! I'm MannSakha, your AI mental health support companion. I'm here to listen and provide " +
			"support. How are you feeling today? Remember, it's okay to not be okay sometimes.",
	},
}

// generalTemplates echo the user's message back; one is picked at random for
// the default bucket.
var generalTemplates = []string{
	"Thank you for sharing %q with me. Your mental health matters, and I'm here to support you. What would be most helpful for you right now?",
	"I appreciate you opening up about %q. Taking care of your mental health is important, and seeking support shows strength. How can I best help you today?",
	"You've shared something important: %q. Remember that it's okay to not be okay sometimes. Every step toward better mental health, including talking to me, is valuable. What's on your mind?",
	"I hear you saying %q. Your feelings and experiences are valid. Mental health is a journey, and you don't have to walk it alone. What support would be most helpful right now?",
}

// rateLimitTemplates acknowledge a throttled request without treating it as
// an error.
var rateLimitTemplates = []string{
	"I'm taking a moment to process your message: %q. While I do that, remember that it's completely normal to have ups and downs in life.",
	"Thank you for sharing %q with me. Sometimes the best conversations happen when we slow down and really listen.",
	"I hear you saying %q. Take a deep breath with me - mental health is about taking things one step at a time.",
	"Your message about %q is important. While I'm processing, remember that asking for help is a sign of strength, not weakness.",
}

// Classify maps a message to exactly one category. It is deterministic: the
// contributor table is checked first, then the support table in priority
// order, and an empty message counts as a greeting.
func Classify(message string) Category {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return CategoryGreeting
	}
	for _, r := range contributorRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	for _, r := range supportRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return CategoryGeneral
}

// Engine renders the canned reply for a classified message. Randomness only
// affects the wording of the general and rate-limit buckets, never the
// category choice.
type Engine struct {
	rnd *rand.Rand
}

func NewEngine(rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rnd: rnd}
}

func (e *Engine) Respond(message string) (string, Category) {
	cat := Classify(message)
	if cat == CategoryGeneral {
		tpl := generalTemplates[e.rnd.Intn(len(generalTemplates))]
		return fmt.Sprintf(tpl, message), cat
	}
	for _, r := range contributorRules {
		if r.category == cat {
			return r.reply, cat
		}
	}
	for _, r := range supportRules {
		if r.category == cat {
			return r.reply, cat
		}
	}
	// unreachable: every non-general category has a rule
	return fmt.Sprintf(generalTemplates[0], message), CategoryGeneral
}

// RateLimited returns the degraded reply used when the caller has exhausted
// its request window.
func (e *Engine) RateLimited(message string) string {
	tpl := rateLimitTemplates[e.rnd.Intn(len(rateLimitTemplates))]
	return fmt.Sprintf(tpl, message)
}

// GeneralReplies exposes the candidate texts for a message so tests can
// assert membership instead of exact output.
func GeneralReplies(message string) []string {
	out := make([]string, 0, len(generalTemplates))
	for _, tpl := range generalTemplates {
		out = append(out, fmt.Sprintf(tpl, message))
	}
	return out
}

// RateLimitReplies is the rate-limit counterpart of GeneralReplies.
func RateLimitReplies(message string) []string {
	out := make([]string, 0, len(rateLimitTemplates))
	for _, tpl := range rateLimitTemplates {
		out = append(out, fmt.Sprintf(tpl, message))
	}
	return out
}
