package router

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

type errorResponse struct {
	XMLName xml.Name `xml:"error"`
	Code    int      `xml:"code"`
	Message string   `xml:"message"`
}

type sesTokInfo struct {
	SesInfo string `xml:"SesInfo"`
	TokInfo string `xml:"TokInfo"`
}

type tokenResponse struct {
	Token string `xml:"token"`
}

type loginRequest struct {
	XMLName      xml.Name `xml:"request"`
	Username     string   `xml:"Username"`
	Password     string   `xml:"Password"`
	PasswordType int      `xml:"password_type"`
}

type clearTrafficRequest struct {
	XMLName      xml.Name `xml:"request"`
	ClearTraffic int      `xml:"ClearTraffic"`
}

type signalResponse struct {
	RSRQ   string `xml:"rsrq"`
	RSRP   string `xml:"rsrp"`
	RSSI   string `xml:"rssi"`
	SINR   string `xml:"sinr"`
	CellID string `xml:"cell_id"`
}

type trafficResponse struct {
	CurrentConnectTime  string `xml:"CurrentConnectTime"`
	CurrentUpload       string `xml:"CurrentUpload"`
	CurrentDownload     string `xml:"CurrentDownload"`
	CurrentDownloadRate string `xml:"CurrentDownloadRate"`
	CurrentUploadRate   string `xml:"CurrentUploadRate"`
	TotalUpload         string `xml:"TotalUpload"`
	TotalDownload       string `xml:"TotalDownload"`
	TotalConnectTime    string `xml:"TotalConnectTime"`
}

func encodeRequest(v any) ([]byte, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), b...), nil
}

// decodeResponse unmarshals a <response> body into v, or returns *APIError
// for an <error> body. v may be nil for "<response>OK</response>" calls.
func decodeResponse(path string, body []byte, v any) error {
	var probe struct{ XMLName xml.Name }
	if err := xml.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("router %s: decode: %w", path, err)
	}
	switch probe.XMLName.Local {
	case "error":
		var e errorResponse
		if err := xml.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("router %s: decode error body: %w", path, err)
		}
		return &APIError{Path: path, Code: e.Code, Message: e.Message}
	case "response":
	default:
		return fmt.Errorf("router %s: unexpected root element <%s>", path, probe.XMLName.Local)
	}
	if v == nil {
		if !bytes.Contains(body, []byte("OK")) {
			return fmt.Errorf("router %s: unexpected response %q", path, bytes.TrimSpace(body))
		}
		return nil
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("router %s: decode: %w", path, err)
	}
	return nil
}
