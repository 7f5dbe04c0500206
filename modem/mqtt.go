package modem

import (
	"fmt"
	"strings"

	"i4.energy/across/ltegw/at"
)

// MQTT profile parameter opcodes (+UMQTT).
const (
	mqttOpClientID    = 0
	mqttOpServerName  = 2
	mqttOpIPAddress   = 3
	mqttOpCredentials = 4
	mqttOpSecure      = 11
)

// SetMQTTClientID sets the client identifier presented at login.
func (m *Modem) SetMQTTClientID(clientID string) error {
	return m.expectOK(fmt.Sprintf("+UMQTT=%d,%q", mqttOpClientID, clientID), standardTimeout)
}

// SetMQTTServer sets the broker hostname and port.
func (m *Modem) SetMQTTServer(server string, port int) error {
	return m.expectOK(fmt.Sprintf("+UMQTT=%d,%q,%d", mqttOpServerName, server, port), standardTimeout)
}

// SetMQTTCredentials sets the username and password used at login.
func (m *Modem) SetMQTTCredentials(username, password string) error {
	return m.expectOK(fmt.Sprintf("+UMQTT=%d,%q,%q", mqttOpCredentials, username, password), standardTimeout)
}

// SetMQTTSecure enables TLS, optionally binding a security profile
// (pass -1 for none).
func (m *Modem) SetMQTTSecure(secure bool, securityProfile int) error {
	v := 0
	if secure {
		v = 1
	}
	if securityProfile < 0 {
		return m.expectOK(fmt.Sprintf("+UMQTT=%d,%d", mqttOpSecure, v), standardTimeout)
	}
	return m.expectOK(fmt.Sprintf("+UMQTT=%d,%d,%d", mqttOpSecure, v, securityProfile), standardTimeout)
}

// MQTTConnect logs in to the configured broker. The outcome arrives
// as a +UUMQTTC login notification.
func (m *Modem) MQTTConnect() error {
	return m.expectOK(fmt.Sprintf("+UMQTTC=%d", MQTTCommandLogin), standardTimeout)
}

// MQTTDisconnect logs out from the broker.
func (m *Modem) MQTTDisconnect() error {
	return m.expectOK(fmt.Sprintf("+UMQTTC=%d", MQTTCommandLogout), standardTimeout)
}

// MQTTSubscribe subscribes to topic with the given maximum QoS. The
// granted QoS arrives in the subscribe notification.
func (m *Modem) MQTTSubscribe(maxQoS int, topic string) error {
	return m.expectOK(fmt.Sprintf("+UMQTTC=%d,%d,%q", MQTTCommandSubscribe, maxQoS, topic), standardTimeout)
}

// MQTTUnsubscribe removes the subscription for topic.
func (m *Modem) MQTTUnsubscribe(topic string) error {
	return m.expectOK(fmt.Sprintf("+UMQTTC=%d,%q", MQTTCommandUnsubscribe, topic), standardTimeout)
}

// MQTTPublish publishes a text message. Quotes in the message are not
// allowed by the module's text publish syntax; use MQTTPublishBinary
// for arbitrary payloads.
func (m *Modem) MQTTPublish(qos int, retain bool, topic, message string) error {
	if strings.ContainsAny(message, `"`) {
		return fmt.Errorf("mqtt publish: message contains quotes: %w", ErrInvalidParam)
	}
	r := 0
	if retain {
		r = 1
	}
	cmd := fmt.Sprintf("+UMQTTC=%d,%d,%d,0,%q,%q", MQTTCommandPublish, qos, r, topic, message)
	return m.expectOK(cmd, tenSecondTimeout)
}

// MQTTPublishBinary publishes an arbitrary payload. The module prompts
// for the payload bytes after accepting the length, so the message may
// contain characters that MQTTPublish rejects.
func (m *Modem) MQTTPublishBinary(qos int, retain bool, topic string, payload []byte) error {
	r := 0
	if retain {
		r = 1
	}
	cmd := fmt.Sprintf("+UMQTTC=%d,%d,%d,%q,%d", MQTTCommandPublishBinary, qos, r, topic, len(payload))
	if err := m.sendCommandExpectPrompt(cmd, "\n"+at.Prompt, standardTimeout); err != nil {
		return fmt.Errorf("mqtt publish binary: %w", err)
	}
	if err := m.sendCommand(string(payload), false); err != nil {
		return fmt.Errorf("mqtt publish binary: %w", err)
	}
	if err := m.waitForResponse(at.ResponseOK, at.ResponseError, standardTimeout); err != nil {
		return fmt.Errorf("mqtt publish binary: %w", err)
	}
	return nil
}

// MQTTPublishFile publishes the contents of a file on the module's
// file system.
func (m *Modem) MQTTPublishFile(qos int, retain bool, topic, filename string) error {
	r := 0
	if retain {
		r = 1
	}
	cmd := fmt.Sprintf("+UMQTTC=%d,%d,%d,%q,%q", MQTTCommandPublishFile, qos, r, topic, filename)
	return m.expectOK(cmd, tenSecondTimeout)
}

// MQTTReadMessage reads one received message from the module's buffer.
// It returns the topic and payload.
func (m *Modem) MQTTReadMessage() (topic string, payload []byte, err error) {
	resp, err := m.sendCommandWithResponse(fmt.Sprintf("+UMQTTC=%d,1", MQTTCommandRead), "", tenSecondTimeout)
	if err != nil {
		return "", nil, fmt.Errorf("mqtt read: %w", err)
	}

	// +UMQTTC: 6,<qos>,<len>,<topic_len>,"<topic>",<msg_len>,"<msg>"
	rest, ok := responsePayload(resp, "+UMQTTC:")
	if !ok {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	var op, qos, total, topicLen int
	if n, _ := fmt.Sscanf(rest, "%d,%d,%d,%d,", &op, &qos, &total, &topicLen); n != 4 {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	open := strings.IndexByte(rest, '"')
	if open < 0 || open+1+topicLen > len(rest) {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	topic = rest[open+1 : open+1+topicLen]

	tail := rest[open+1+topicLen:]
	var msgLen int
	if n, _ := fmt.Sscanf(tail, "\",%d,", &msgLen); n != 1 {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	closing := strings.IndexByte(tail, '"')
	if closing < 0 {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	msgOpen := strings.IndexByte(tail[closing+1:], '"')
	if msgOpen < 0 {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	msgStart := closing + 1 + msgOpen
	if msgStart+1+msgLen > len(tail) {
		return "", nil, fmt.Errorf("mqtt read: %w", ErrUnexpectedResponse)
	}
	return topic, []byte(tail[msgStart+1 : msgStart+1+msgLen]), nil
}

// MQTTError returns the error codes of the last MQTT operation.
func (m *Modem) MQTTError() (class, code int, err error) {
	resp, err := m.sendCommandWithResponse("+UMQTTER", "", standardTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("mqtt error query: %w", err)
	}
	rest, ok := responsePayload(resp, "+UMQTTER:")
	if !ok {
		return 0, 0, fmt.Errorf("mqtt error query: %w", ErrUnexpectedResponse)
	}
	if n, _ := fmt.Sscanf(rest, "%d,%d", &class, &code); n != 2 {
		return 0, 0, fmt.Errorf("mqtt error query: %w", ErrUnexpectedResponse)
	}
	return class, code, nil
}
