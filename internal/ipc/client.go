package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"themehint/pkg/global"
)

// SendCommand delivers command to the server listening on socketPath.
func SendCommand(socketPath, command string) (Response, error) {
	log := global.GetLogger()

	log.Debug("Attempting to connect to socket server", "path", socketPath)

	conn, err := net.DialTimeout("unix", socketPath, requestTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("failed to connect to socket server: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	if err := json.NewEncoder(conn).Encode(Request{Command: command}); err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	log.Debug("Request sent successfully", "command", command)

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Info("Response received", "status", resp.Status, "message", resp.Message)
	return resp, nil
}
