package router

import (
	"fmt"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
)

// CourseData is the course payload attached to a redirect reply.
type CourseData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// RedirectData carries the identifiers the frontend needs to navigate to
// a course.
type RedirectData struct {
	CourseID   string `json:"courseId"`
	CategoryID string `json:"categoryId,omitempty"`
	ModuleID   string `json:"moduleId,omitempty"`
}

// Reply is the single structured output produced for every inbound
// message. Every path through the router terminates in exactly one Reply.
type Reply struct {
	Response       string        `json:"response"`
	Action         string        `json:"action,omitempty"`
	ShouldRedirect bool          `json:"shouldRedirect"`
	CourseData     *CourseData   `json:"course_data,omitempty"`
	RedirectData   *RedirectData `json:"redirect_data,omitempty"`
	RedirectURL    string        `json:"redirect_url,omitempty"`
	Confidence     float64       `json:"confidence"`
	Intent         string        `json:"intent"`
}

// courseRedirectReply builds the reply for a matched course. The redirect
// URL needs both a category and a module; when either is missing the
// frontend falls back to the identifiers in RedirectData.
func courseRedirectReply(course catalog.Course, categoryID string) Reply {
	reply := Reply{
		Response:       fmt.Sprintf("J'ai trouvé le cours \"%s\" pour vous. Je vous y emmène !", course.Title),
		Action:         "redirect_course",
		ShouldRedirect: true,
		CourseData: &CourseData{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
		},
		RedirectData: &RedirectData{
			CourseID:   course.ID,
			CategoryID: categoryID,
			ModuleID:   course.ModuleID,
		},
		Confidence: 1.0,
		Intent:     "recherche_cours",
	}
	if categoryID != "" && course.ModuleID != "" {
		reply.RedirectURL = fmt.Sprintf("/categories/%s/modules/%s", categoryID, course.ModuleID)
	}
	return reply
}

func notFoundReply(suggestions string) Reply {
	response := "Je n'ai pas trouvé de cours correspondant à votre recherche."
	if suggestions != "" {
		response += " Peut-être que ces cours vous intéresseront : " + suggestions
	} else {
		response += " Essayez avec le nom d'une technologie, par exemple \"cours javascript\"."
	}
	return Reply{
		Response:   response,
		Confidence: 1.0,
		Intent:     "recherche_cours",
	}
}

func clarificationReply(label string) Reply {
	return Reply{
		Response:   "Je ne suis pas sûr de comprendre. Pouvez-vous reformuler votre question ?",
		Confidence: 0,
		Intent:     label,
	}
}

// RateLimitedReply is returned in-band when a user sends messages faster
// than their token bucket allows. A chat widget renders it like any other
// reply, so throttling reads as the assistant asking for a pause rather
// than a transport failure.
func RateLimitedReply() Reply {
	return Reply{
		Response:   "Vous envoyez des messages trop rapidement. Patientez un instant avant de réessayer.",
		Confidence: 0,
		Intent:     "rate_limited",
	}
}

func errorReply() Reply {
	return Reply{
		Response:   "Désolé, une erreur est survenue. Veuillez réessayer dans un instant.",
		Confidence: 0,
		Intent:     "error",
	}
}
