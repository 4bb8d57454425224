package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/floormap"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
	"github.com/wricardo/mcp-training/parkingnav/parking/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Parking Navigator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Parking Navigator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Guide a traveler on foot through a multi-floor parking facility to a parking spot.
Select a spot to preview the route, confirm it to start walking, and poll
navigation_state until the phase is "arrived".

AVAILABLE TOOLS:
- create_session: Start navigating a facility
- list_sessions / get_session / delete_session: Manage sessions
- navigation_state: Current phase, position, route and optional floor map
- select_floor: View another floor
- select_spot: Preview the route to a spot
- confirm_route: Start walking the previewed route
- cancel_route: Drop the current route
- dismiss_arrival: Acknowledge arrival and return to idle
- find_my_car: Preview the route to your parked car
- find_free_spot: Preview the route to the nearest free spot
- list_facilities: Facilities with occupancy per floor
- describe_floor: Floor map with sections and spots
- refresh_facility: Reload a facility from disk
- navigation_instructions: How navigation works

Floors are written "1", "2" or "B1" for basements.`),
	)

	c.registerTools()
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
		},
		Required: []string{"session_id"},
	}
}

func emptySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

var floorProperty = map[string]interface{}{
	"type":        "string",
	"description": "Floor label such as \"1\", \"2\" or \"B1\"",
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a navigation session. The traveler starts at the facility entry unless a start is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"facility_id": map[string]interface{}{
					"type":        "string",
					"description": "Facility to navigate (optional, defaults to the server default)",
				},
				"start_floor": floorProperty,
				"start_x": map[string]interface{}{
					"type":        "integer",
					"description": "Start column (0-39), requires start_floor",
				},
				"start_y": map[string]interface{}{
					"type":        "integer",
					"description": "Start row (0-39), requires start_floor",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active navigation sessions",
		InputSchema: emptySchema(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Stop and delete a session",
		InputSchema: sessionOnlySchema(),
	}, c.handleDeleteSession)

	// Navigation
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "navigation_state",
		Description: "Get the current navigation state, optionally with a map of the viewed floor",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"show_map": map[string]interface{}{
					"type":        "boolean",
					"description": "Include a character map of the viewed floor",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNavigationState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_floor",
		Description: "Switch the viewed floor. Cancels any previewed route.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"floor": floorProperty,
			},
			Required: []string{"session_id", "floor"},
		},
	}, c.handleSelectFloor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_spot",
		Description: "Plan a route to a parking spot and show a preview",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"floor": floorProperty,
				"spot_id": map[string]interface{}{
					"type":        "string",
					"description": "Spot identifier such as \"A1\"",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why this spot was chosen",
				},
			},
			Required: []string{"session_id", "floor", "spot_id"},
		},
	}, c.handleSelectSpot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "confirm_route",
		Description: "Start walking the previewed route",
		InputSchema: sessionOnlySchema(),
	}, c.handleConfirmRoute)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_route",
		Description: "Cancel the previewed or active route",
		InputSchema: sessionOnlySchema(),
	}, c.handleCancelRoute)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "dismiss_arrival",
		Description: "Acknowledge arrival and return to idle",
		InputSchema: sessionOnlySchema(),
	}, c.handleDismissArrival)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_my_car",
		Description: "Preview the route back to the session's parked car",
		InputSchema: sessionOnlySchema(),
	}, c.handleFindMyCar)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_free_spot",
		Description: "Preview the route to the nearest free spot",
		InputSchema: sessionOnlySchema(),
	}, c.handleFindFreeSpot)

	// Facilities
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_facilities",
		Description: "List available facilities with occupancy per floor",
		InputSchema: emptySchema(),
	}, c.handleListFacilities)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_floor",
		Description: "Get a character map of a floor with its sections and spots",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"facility_id": map[string]interface{}{
					"type":        "string",
					"description": "Facility identifier from list_facilities",
				},
				"floor": floorProperty,
			},
			Required: []string{"facility_id", "floor"},
		},
	}, c.handleDescribeFloor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "refresh_facility",
		Description: "Reload a facility from disk. Sessions on a changed facility lose their route.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"facility_id": map[string]interface{}{
					"type":        "string",
					"description": "Facility identifier",
				},
			},
			Required: []string{"facility_id"},
		},
	}, c.handleRefreshFacility)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "navigation_instructions",
		Description: "Explain navigation phases, map symbols and routing rules",
		InputSchema: emptySchema(),
	}, c.handleNavigationInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiRaw(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// apiCall performs a request and decodes the response into result. Failed
// navigation commands come back with an error status but a command result
// body; those decode normally so the caller can report the failure code.
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	data, status, err := c.apiRaw(ctx, method, path, body)
	if err != nil {
		return err
	}

	if status >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		if _, isCommand := result.(*service.CommandResult); !isCommand {
			return fmt.Errorf("API error: %d", status)
		}
	}

	if result != nil {
		return json.Unmarshal(data, result)
	}
	return nil
}

// fetchFacility loads the full facility model through the API.
func (c *Client) fetchFacility(ctx context.Context, name string) (*facility.Facility, error) {
	data, status, err := c.apiRaw(ctx, "GET", "/api/facilities/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		var errResp map[string]string
		json.Unmarshal(data, &errResp)
		if msg, ok := errResp["error"]; ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("API error: %d", status)
	}
	return facility.Decode(bytes.NewReader(data), facility.FormatJSON)
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// levelArg accepts a floor either as a label or as a number.
func levelArg(args map[string]interface{}, key string) (facility.Level, bool, error) {
	switch v := args[key].(type) {
	case string:
		if v == "" {
			return 0, false, nil
		}
		level, err := facility.ParseLevel(v)
		return level, err == nil, err
	case float64:
		return facility.Level(int(v)), true, nil
	case nil:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("%s must be a floor label such as \"1\" or \"B1\"", key)
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if id := stringArg(args, "facility_id"); id != "" {
		body["facility_id"] = id
	}

	floor, hasFloor, err := levelArg(args, "start_floor")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if hasFloor {
		x, okX := args["start_x"].(float64)
		y, okY := args["start_y"].(float64)
		if !okX || !okY {
			return mcp.NewToolResultError("start_x and start_y are required with start_floor"), nil
		}
		body["start"] = facility.Location{Floor: floor, Position: facility.Point{X: int(x), Y: int(y)}}
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nFacility: %s\n\n%s", session.ID, session.Facility, formatSnapshot(&session.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		b.WriteString(fmt.Sprintf("- %s (Facility: %s, Phase: %s, Floor: %s, Created: %s)\n",
			s.ID, s.Facility, s.Snapshot.Phase, s.Snapshot.Traveler.Floor, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleNavigationState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	showMap, _ := args["show_map"].(bool)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSnapshot(&session.Snapshot)
	if showMap {
		f, err := c.fetchFacility(ctx, session.Facility)
		if err != nil {
			result += "\nMap unavailable: " + err.Error() + "\n"
		} else {
			result += "\n" + formatSnapshotMap(f, &session.Snapshot)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) command(ctx context.Context, sessionID, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleSelectFloor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	floor, ok, err := levelArg(args, "floor")
	if err != nil || !ok {
		return mcp.NewToolResultError("floor is required, e.g. \"1\" or \"B1\""), nil
	}

	return c.command(ctx, stringArg(args, "session_id"), "/floor", map[string]interface{}{"floor": floor})
}

func (c *Client) handleSelectSpot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	floor, ok, err := levelArg(args, "floor")
	if err != nil || !ok {
		return mcp.NewToolResultError("floor is required, e.g. \"1\" or \"B1\""), nil
	}
	spotID := stringArg(args, "spot_id")
	if spotID == "" {
		return mcp.NewToolResultError("spot_id is required"), nil
	}

	return c.command(ctx, stringArg(args, "session_id"), "/select", map[string]interface{}{
		"floor":   floor,
		"spot_id": spotID,
	})
}

func (c *Client) handleConfirmRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, stringArg(arguments(request), "session_id"), "/confirm", nil)
}

func (c *Client) handleCancelRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, stringArg(arguments(request), "session_id"), "/cancel", nil)
}

func (c *Client) handleDismissArrival(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, stringArg(arguments(request), "session_id"), "/dismiss", nil)
}

func (c *Client) handleFindMyCar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, stringArg(arguments(request), "session_id"), "/find-car", nil)
}

func (c *Client) handleFindFreeSpot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, stringArg(arguments(request), "session_id"), "/find-free", nil)
}

func (c *Client) handleListFacilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count      int                    `json:"count"`
		Facilities []service.FacilityInfo `json:"facilities"`
	}
	if err := c.apiCall(ctx, "GET", "/api/facilities", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFacilities(response.Facilities)), nil
}

func (c *Client) handleDescribeFloor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	level, ok, err := levelArg(args, "floor")
	if err != nil || !ok {
		return mcp.NewToolResultError("floor is required, e.g. \"1\" or \"B1\""), nil
	}

	f, err := c.fetchFacility(ctx, stringArg(args, "facility_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	floor, err := f.Floor(level)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFloor(floor)), nil
}

func (c *Client) handleRefreshFacility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(arguments(request), "facility_id")

	var result service.RefreshResult
	if err := c.apiCall(ctx, "POST", "/api/facilities/"+url.PathEscape(name)+"/refresh", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Changed {
		return mcp.NewToolResultText(fmt.Sprintf("Facility %s is unchanged.", result.Facility)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Facility %s reloaded. %d session(s) were reset to idle.",
		result.Facility, result.SessionsReset)), nil
}

func (c *Client) handleNavigationInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Parking Navigator - Instructions

NAVIGATION FLOW:
1. create_session places you at the facility entry (or a given start).
2. select_spot plans a route and shows a preview (phase route_preview).
3. confirm_route starts walking. The traveler advances one cell per tick.
4. Poll navigation_state until the phase is "arrived".
5. dismiss_arrival returns to idle so you can pick another spot.

PHASES:
- idle: no route
- route_preview: a route is planned but not started
- navigating_same_floor: walking to a spot on your floor
- navigating_to_stairs: walking to the stairs before a floor change
- changing_floor: taking the stairs (a short pause)
- navigating_to_spot: walking from the stairs to the spot
- arrived: at the destination

ROUTING RULES:
- Movement is 4-directional on a 40x40 grid per floor.
- The walls of every section are blocked except the section you start in
  and the section you are heading to.
- Floor changes always go through the first stairs on each floor.

MAP LEGEND:
` + floormap.Legend() + `

FAILURES:
Commands that cannot be done report a code instead of failing:
- no_route: the spot cannot be reached
- no_stairs: a floor on the route has no stairs
- invalid_spot: the spot does not exist on that floor
- invalid_transition: the command is not allowed in the current phase
- no_car / no_free_spot: nothing matched the search`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session: %s\nFacility: %s\nCreated: %s\nLast active: %s\n",
		session.ID, session.Facility,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05")))
	if session.Car != nil {
		b.WriteString(fmt.Sprintf("Your car: %s\n", formatSpotLocation(session.Car)))
	}
	b.WriteString("\n")
	b.WriteString(formatSnapshot(&session.Snapshot))
	return b.String()
}

func formatSpotLocation(s *facility.SpotLocation) string {
	text := fmt.Sprintf("%s on floor %s (%s) at (%d,%d)", s.Spot.ID, s.Floor, s.SectionID, s.Spot.X, s.Spot.Y)
	if s.Spot.LicensePlate != "" {
		text += ", plate " + s.Spot.LicensePlate
	}
	return text
}

func formatSnapshot(snap *navigation.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Phase: %s (%s)\n", snap.Status, snap.Phase))
	b.WriteString(fmt.Sprintf("You: floor %s at (%d,%d) | Viewing floor %s\n",
		snap.Traveler.Floor, snap.Traveler.Position.X, snap.Traveler.Position.Y, snap.ViewFloor))

	if t := snap.Target; t != nil {
		b.WriteString(fmt.Sprintf("Destination: %s on floor %s (%s) at (%d,%d)\n",
			t.SpotID, t.Floor, t.SectionID, t.Point.X, t.Point.Y))
	}
	if cf := snap.CrossFloor; cf != nil {
		b.WriteString(fmt.Sprintf("Floor change: %s -> %s via stairs at (%d,%d)\n",
			cf.SourceFloor, cf.TargetFloor, cf.StagingPoint.X, cf.StagingPoint.Y))
	}

	if p := snap.Preview; p != nil {
		crossing := ""
		if p.CrossFloor {
			crossing = ", changes floor"
		}
		b.WriteString(fmt.Sprintf("Route preview: %d cells, ~%d time units%s. Use confirm_route to start.\n",
			p.Distance, p.Time, crossing))
	}

	if snap.Phase.IsNavigating() || snap.Phase == navigation.PhaseChangingFloor {
		b.WriteString(fmt.Sprintf("Remaining: %d cells, ~%d time units | Progress: %.0f%%",
			snap.RemainingDistance, snap.RemainingTime, snap.Progress*100))
		if snap.Hint != "" {
			b.WriteString(fmt.Sprintf(" | Next: %s", snap.Hint))
		}
		b.WriteString("\n")
	}

	if len(snap.Instructions) > 0 {
		steps := make([]string, 0, len(snap.Instructions))
		for _, in := range snap.Instructions {
			steps = append(steps, fmt.Sprintf("%s %d", in.Direction, in.Distance))
		}
		b.WriteString("Directions: " + strings.Join(steps, ", ") + "\n")
	}

	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Command accepted\n")
	} else {
		b.WriteString(fmt.Sprintf("✗ Command failed [%s]\n", result.Code))
	}
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	if result.Spot != nil {
		b.WriteString(fmt.Sprintf("Spot: %s\n", formatSpotLocation(result.Spot)))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			line := fmt.Sprintf("- %s", event.Type)
			if event.From != "" || event.To != "" {
				line += fmt.Sprintf(" %s -> %s", event.From, event.To)
			}
			if event.Message != "" {
				line += ": " + event.Message
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(&result.Snapshot))
	return b.String()
}

// formatSnapshotMap draws the viewed floor with the traveler and route.
func formatSnapshotMap(f *facility.Facility, snap *navigation.Snapshot) string {
	floor, err := f.Floor(snap.ViewFloor)
	if err != nil {
		return "Map unavailable: " + err.Error() + "\n"
	}

	var ov floormap.Overlay
	if snap.Traveler.Floor == snap.ViewFloor {
		p := snap.Traveler.Position
		ov.Traveler = &p
	}
	if t := snap.Target; t != nil && t.Floor == snap.ViewFloor {
		p := t.Point
		ov.Target = &p
	}
	switch {
	case len(snap.PendingPath) > 0:
		ov.Path = snap.PendingPath
	case snap.Cursor < len(snap.ActivePath):
		ov.Path = snap.ActivePath[snap.Cursor:]
	}

	return fmt.Sprintf("Floor %s map:\n%s\n\nLegend: %s\n",
		snap.ViewFloor, floormap.Build(floor, ov), floormap.Legend())
}

func formatFloor(floor *facility.Floor) string {
	var b strings.Builder
	stats := floor.Stats()
	b.WriteString(fmt.Sprintf("Floor %s - %s: %d/%d occupied (%d%%, %s)\n\n",
		floor.Level, floor.Title, stats.Occupied, stats.Capacity, stats.Percent, stats.Band))

	b.WriteString(floormap.Build(floor, floormap.Overlay{}).String())
	b.WriteString("\n\nLegend: " + floormap.Legend() + "\n\nSections:\n")

	for _, section := range floor.Sections {
		bounds := section.Bounds
		b.WriteString(fmt.Sprintf("- %s (%s) at (%d,%d) %dx%d", section.ID, section.Title,
			bounds.X, bounds.Y, bounds.Width, bounds.Height))
		if len(section.Stairs) > 0 {
			b.WriteString(fmt.Sprintf(", stairs at (%d,%d)", section.Stairs[0].X, section.Stairs[0].Y))
		}
		b.WriteString("\n")

		if len(section.Spots) == 0 {
			continue
		}
		var free, taken []string
		for _, spot := range section.Spots {
			if spot.Occupied {
				taken = append(taken, spot.ID)
			} else {
				free = append(free, spot.ID)
			}
		}
		if len(free) > 0 {
			b.WriteString("  free: " + strings.Join(free, " ") + "\n")
		}
		if len(taken) > 0 {
			b.WriteString("  occupied: " + strings.Join(taken, " ") + "\n")
		}
	}
	return b.String()
}

func formatFacilities(facilities []service.FacilityInfo) string {
	sort.Slice(facilities, func(i, j int) bool { return facilities[i].FacilityID < facilities[j].FacilityID })

	var b strings.Builder
	b.WriteString("Available Facilities:\n\n")
	for _, f := range facilities {
		b.WriteString(fmt.Sprintf("• %s (%s)\n  %d/%d spots free\n", f.Name, f.FacilityID, f.AvailableSpots, f.TotalSpots))
		if f.Address != "" {
			b.WriteString("  " + f.Address + "\n")
		}
		for _, floor := range f.Floors {
			b.WriteString(fmt.Sprintf("  Floor %s: %d/%d occupied (%s)\n", floor.Level, floor.Occupied, floor.Capacity, floor.Band))
		}
		b.WriteString("\n")
	}
	return b.String()
}
