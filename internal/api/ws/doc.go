// Package ws connects embedded web views to shells over WebSocket.
//
// Each connection is one content engine. The engine reports bridge and web
// view events as JSON messages, and the shell drives it back with commands.
//
// Messages (engine → server):
//
//	{"name": "<bridge method>", "args": {...}}
//	{"name": "shouldOverrideUrlLoading", "id": 7, "args": {...}}
//	{"name": "ping"}
//
// Messages (server → engine):
//
//	{"type": "command", "command": "loadURL", "location": "..."}
//	{"type": "command", "command": "reload"}
//	{"type": "command", "command": "visitLocation", "location": "...", "options": "{...}", "restorationIdentifier": "..."}
//	{"type": "command", "command": "installBridge"}
//	{"type": "command", "command": "openExternal", "location": "..."}
//	{"type": "override", "id": 7, "override": true}
//	{"type": "ready", "shellId": "shell_..."}
//	{"type": "pong"}
//	{"type": "error", "message": "..."}
//
// Example Usage:
//
//	handler := ws.NewHandler(registry, ws.Config{}, logger, metrics)
//	router.GET("/bridge", handler.HandleConnection)
package ws
