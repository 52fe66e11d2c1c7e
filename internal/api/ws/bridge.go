package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
)

const (
	commandLoadURL       = "loadURL"
	commandReload        = "reload"
	commandVisitLocation = "visitLocation"
	commandInstallBridge = "installBridge"
	commandOpenExternal  = "openExternal"
)

// Bridge is the engine on the far side of a connection. It implements
// session.Engine by sending commands.
type Bridge struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
	logger       *zap.Logger
	metrics      *monitoring.Metrics
}

func newBridge(conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *Bridge {
	return &Bridge{conn: conn, writeTimeout: writeTimeout, logger: logger, metrics: metrics}
}

func (b *Bridge) LoadURL(location string) {
	b.command(Outbound{Command: commandLoadURL, Location: location})
}

func (b *Bridge) Reload() {
	b.command(Outbound{Command: commandReload})
}

func (b *Bridge) VisitLocation(location string, options visit.Options, restorationID string) {
	encoded, err := options.JSON()
	if err != nil {
		b.logger.Error("Failed to encode visit options", zap.String("location", location), zap.Error(err))
		return
	}
	b.command(Outbound{Command: commandVisitLocation, Location: location, Options: encoded, RestorationID: restorationID})
}

func (b *Bridge) InstallBridge() {
	b.command(Outbound{Command: commandInstallBridge})
}

// Open implements navigation.ExternalOpener by asking the device to hand
// location to another app.
func (b *Bridge) Open(location string) error {
	return b.send(Outbound{Type: "command", Command: commandOpenExternal, Location: location})
}

func (b *Bridge) command(msg Outbound) {
	msg.Type = "command"
	if err := b.send(msg); err != nil {
		b.logger.Warn("Failed to send command", zap.String("command", msg.Command), zap.Error(err))
	}
}

// send writes one message. Commands come from the shell loop while replies
// come from the read loop, so writes are serialised.
func (b *Bridge) send(msg Outbound) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.writeTimeout > 0 {
		_ = b.conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
	}
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}

	label := msg.Type
	if msg.Command != "" {
		label = msg.Command
	}
	b.metrics.RecordBridgeMessage("out", label)
	return nil
}

func (b *Bridge) sendError(message string) {
	_ = b.send(Outbound{Type: "error", Message: message})
}
