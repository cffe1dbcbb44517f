package api

import "github.com/poiesic/quaerit/qa"

// AnswerRequest is the body of POST /api/v1/answers. Documents carries
// a single document URL; the plural name is kept for compatibility
// with existing clients.
type AnswerRequest struct {
	Documents string   `json:"documents" validate:"required,url"`
	Questions []string `json:"questions" validate:"required,min=1,dive,required"`
}

// Answer pairs one question with its generated answer.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerResponse is the body returned by POST /api/v1/answers.
type AnswerResponse struct {
	Answers []Answer `json:"answers"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func toAnswerResponse(results []qa.Result) AnswerResponse {
	answers := make([]Answer, 0, len(results))
	for _, r := range results {
		answers = append(answers, Answer{Question: r.Question, Answer: r.Answer})
	}
	return AnswerResponse{Answers: answers}
}

// degradedResponse reports an indexing failure as the answer to every
// question. Clients always receive one answer per question, even when
// the document itself was the problem.
func degradedResponse(questions []string, err error) AnswerResponse {
	answers := make([]Answer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, Answer{Question: q, Answer: err.Error()})
	}
	return AnswerResponse{Answers: answers}
}
