package types

type MQPayload map[string]interface{}

type MQMessage struct {
	Service string     `json:"service"`
	Message string     `json:"message"`
	Payload *MQPayload `json:"payload,omitempty"`
}

func NewMQMessage(service string, message string) *MQMessage {
	return &MQMessage{
		Service: service,
		Message: message,
	}
}

func (message *MQMessage) SetPayload(payload MQPayload) *MQMessage {
	message.Payload = &payload
	return message
}
