package resource

type RealtimeEventResource struct {
	CaseID string      `json:"caseId"`
	Topic  string      `json:"topic"`
	Data   interface{} `json:"data"`
}

func NewRealtimeEvent(caseID, topic string, data interface{}) *RealtimeEventResource {
	return &RealtimeEventResource{
		CaseID: caseID,
		Topic:  topic,
		Data:   data,
	}
}
