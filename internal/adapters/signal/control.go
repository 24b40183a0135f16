package signal

func (ctl *SignalWSController) handlePing(s *session) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.reply(s, resp)
}
