// Package periphhal adapts the wire protocol's TX-side HAL onto real GPIO
// and SPI hardware using periph.io. It only backs the TX/master role: the
// periph.io conn/spi package exposes master-mode transfers, with no
// SPI-slave capture API, so an RX-side binding (the decoder role) is left
// to the integrator's own MCU toolchain.
package periphhal

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/keskad/zusi-go/pkgs/zusi"
)

// Bus implements tx.HAL atop a periph.io clock pin, data pin and SPI port.
type Bus struct {
	clock gpio.PinIO
	data  gpio.PinIO

	spiPort string
	spiConn spi.Conn
	spiDev  spi.PortCloser
}

// Open initializes the periph.io host drivers and binds clockPin/dataPin by
// name (e.g. "GPIO17") and spiPortName (e.g. "/dev/spidev0.0").
func Open(clockPin, dataPin, spiPortName string) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphhal: init host drivers: %w", err)
	}

	clock := gpioreg.ByName(clockPin)
	if clock == nil {
		return nil, fmt.Errorf("periphhal: unknown clock pin %q", clockPin)
	}
	data := gpioreg.ByName(dataPin)
	if data == nil {
		return nil, fmt.Errorf("periphhal: unknown data pin %q", dataPin)
	}

	return &Bus{clock: clock, data: data, spiPort: spiPortName}, nil
}

// SPIMaster opens the SPI port and leaves the clock/data pins untouched;
// the bus is assumed bit-banged only while in GPIO mode.
func (b *Bus) SPIMaster() {
	port, err := spireg.Open(b.spiPort)
	if err != nil {
		return
	}
	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return
	}
	b.spiDev = port
	b.spiConn = conn
}

func (b *Bus) closeSPI() {
	if b.spiDev != nil {
		b.spiDev.Close()
		b.spiDev = nil
		b.spiConn = nil
	}
}

// GPIOInput switches clock and data to bit-banged input mode, closing SPI.
func (b *Bus) GPIOInput() {
	b.closeSPI()
	_ = b.clock.In(gpio.PullNoChange, gpio.NoEdge)
	_ = b.data.In(gpio.PullNoChange, gpio.NoEdge)
}

// GPIOOutput switches clock and data to bit-banged output mode, closing SPI.
func (b *Bus) GPIOOutput() {
	b.closeSPI()
	_ = b.clock.Out(gpio.Low)
	_ = b.data.Out(gpio.Low)
}

// TransmitBytes sends data over the currently-open SPI connection. The
// bitrate parameter is ignored: every transfer runs at the fixed 1 MHz clock
// SPIMaster configures.
func (b *Bus) TransmitBytes(data []byte, _ zusi.Mbps) {
	if b.spiConn == nil {
		return
	}
	rx := make([]byte, len(data))
	_ = b.spiConn.Tx(data, rx)
}

func (b *Bus) WriteClock(state bool) { _ = b.clock.Out(gpio.Level(state)) }
func (b *Bus) WriteData(state bool)  { _ = b.data.Out(gpio.Level(state)) }
func (b *Bus) ReadData() bool        { return bool(b.data.Read()) }

func (b *Bus) DelayUs(us uint32) { time.Sleep(time.Duration(us) * time.Microsecond) }
