package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const (
	baseURL   = "http://localhost:3000/api"
	clientKey = "smoke-test-client"
)

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper. Identity rides on X-Client-Key; the QA surface has no
// login.
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Key", clientKey)

	client := &http.Client{} // No timeout; a cold model can take a while
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var decoded map[string]interface{}
	json.Unmarshal(body, &decoded)
	if data, ok := decoded["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	color.Cyan("🚀 Starting QA Pipeline Smoke Test\n")

	// 1. Create a session
	color.Yellow("\n[QA] 1. Create Session")
	resp, body, err := sendRequest("POST", "/qa/v1/session", map[string]interface{}{})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var sessionID string
	if data := dataField(body); data != nil {
		if id, ok := data["id"].(string); ok {
			sessionID = id
			fmt.Printf("Created Session ID: %s\n", sessionID)
		}
	}
	if sessionID == "" {
		color.Red("No session id returned, aborting")
		os.Exit(1)
	}

	// 2. Ask a question the golden set should cover
	color.Yellow("\n[QA] 2. Ask: annual leave entitlement")
	askReq := map[string]interface{}{
		"qa_session_id": sessionID,
		"question":      "How many days of paid annual leave do I get?",
	}
	resp, body, err = sendRequest("POST", "/qa/v1/ask", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var responseID string
	if data := dataField(body); data != nil {
		fmt.Printf("Answer: %v\n", data["answer"])
		fmt.Printf("Path: %v\n", data["answer_path"])
		if citations, ok := data["citations"].([]interface{}); ok {
			fmt.Printf("Citations: %d\n", len(citations))
		}
		if rid, ok := data["response_id"].(string); ok {
			responseID = rid
		}
	}

	// 3. Same question again; a warm deployment should answer from cache
	color.Yellow("\n[QA] 3. Repeat the question (cache path expected)")
	resp, body, err = sendRequest("POST", "/qa/v1/ask", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Path: %v\n", data["answer_path"])
			if data["answer_path"] != "cache" && data["answer_path"] != "golden" {
				color.Red("Note: repeat did not hit cache or golden (path=%v)", data["answer_path"])
			}
		}
	}

	// 4. Rate the answer
	if responseID != "" {
		color.Yellow("\n[QA] 4. Submit Feedback")
		fbReq := map[string]interface{}{
			"response_id": responseID,
			"rating":      5,
			"comment":     "Matches the statute.",
			"anonymous":   true,
		}
		resp, body, err = sendRequest("POST", "/qa/v1/feedback", fbReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var fbResp map[string]interface{}
			json.Unmarshal(body, &fbResp)
			prettyPrint(fbResp)
		}
	} else {
		color.Red("\n[SKIP] Feedback skipped (no response_id returned)")
	}

	// 5. History should hold the welcome turn plus this exchange
	color.Yellow("\n[QA] 5. Fetch History")
	resp, body, err = sendRequest("GET", "/qa/v1/session/"+sessionID+"/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var histResp map[string]interface{}
		json.Unmarshal(body, &histResp)
		if entries, ok := histResp["data"].([]interface{}); ok {
			fmt.Printf("History entries: %d\n", len(entries))
		}
	}

	// 6. Cleanup
	color.Yellow("\n[QA] 6. Cleanup: Delete Session")
	resp, _, err = sendRequest("DELETE", "/qa/v1/session/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
	}

	color.Cyan("\n✅ Smoke Sequence Complete")
}
