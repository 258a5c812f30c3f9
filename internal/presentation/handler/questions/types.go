package questions

type createQuestionRequest struct {
	Text string `json:"text"`
}

type questionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type listQuestionsResponse struct {
	Questions []questionResponse `json:"questions"`
}
