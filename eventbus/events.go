package eventbus

// StageSettledPayload is the JSON payload published on TopicStageSettled.
type StageSettledPayload struct {
	StageNumber int `json:"stage_number"`
}
