// Package sdcard drives an SD card over a raw SPI transport. It brings the
// card from power-on into SPI mode with the CMD0/CMD8/CMD58/ACMD41 handshake
// and then offers single 512-byte block reads and writes by absolute block
// address.
package sdcard

import (
	"errors"
	"sync"

	"github.com/sdfat/sdfat/addr"
	"github.com/sdfat/sdfat/checkpoint"
)

// BlockSize is the only block length the driver supports. Cards are left at
// their 512-byte default, SET_BLOCKLEN is never issued.
const BlockSize = 512

// Block is a single card block.
type Block = [BlockSize]byte

// SPI is the byte-level transport to the card. Implementations exchange one
// byte per call; the driver never needs more than that.
// It mainly exists to be able to fake the card in tests.
type SPI interface {
	Write(b byte) error
	Read() (byte, error)
}

// ChipSelect drives the card's chip select line, active low on real
// hardware. Select starts a command sequence, Deselect ends it.
type ChipSelect interface {
	Select() error
	Deselect() error
}

// These errors may occur while initializing the card. Each one names the
// step of the handshake that failed.
var (
	ErrInitReset        = errors.New("card did not acknowledge the reset command")
	ErrInitVoltageCheck = errors.New("card failed the interface condition check")
	ErrInitOCRRead      = errors.New("could not read the operating conditions register")
	ErrInitAppInit      = errors.New("card did not leave idle state during app init")
)

// These errors may occur on block transfers.
var (
	ErrNoResponse        = errors.New("no response from card")
	ErrDataRejectedCRC   = errors.New("card rejected block data with a CRC error")
	ErrDataRejectedWrite = errors.New("card rejected block data with a write error")
	ErrUnsupportedVolt   = errors.New("card does not support the required voltage range")
	ErrCheckPattern      = errors.New("card echoed a wrong check pattern")
)

// R1 response bytes and tokens of the SPI protocol.
const (
	respNotIdle        = 0x00 // command accepted, init finished
	respIdle           = 0x01 // command accepted, card still initializing
	respIllegal        = 0x05 // illegal command
	respIllegalCRC     = 0x0D // illegal command plus CRC error
	tokenDataStart     = 0xFE // precedes every 512-byte data block
	tokenBusy          = 0x00 // card busy after a write
	fillByte           = 0xFF // clocked out while listening
	responseWindow     = 10   // reads to wait for an R1 after a command
	resetAttempts      = 100  // CMD0 retries before giving up
	dataTokenWindow    = 1000 // reads to wait for a data or response token
	supportedVoltRange = 0x01 // CMD8 code for 2.7-3.6V
	checkPattern       = 0xAA // CMD8 pattern the card must echo
)

// Version is the SD specification version reported by the card.
type Version int

const (
	// VersionNA is reported before a successful Initialize.
	VersionNA Version = iota
	// Version1 cards predate the 2.00 specification and reject CMD8.
	Version1
	// Version2 cards implement specification 2.00 or later.
	Version2
)

// Capacity is the card's capacity class.
type Capacity int

const (
	// CapacityNA is reported before a successful Initialize.
	CapacityNA Capacity = iota
	// SDSC cards are standard capacity, below 2GB.
	SDSC
	// SDHCOrSDXC cards are high or extended capacity, 2GB up to 2TB.
	SDHCOrSDXC
)

// Info describes a successfully initialized card.
type Info struct {
	Version  Version
	Capacity Capacity

	// OCR holds the raw operating conditions register, MSB at index 0.
	OCR [4]byte
}

// Card is an SD card on an SPI bus. The zero value is not usable, use New.
// All methods serialize on an internal mutex because the card processes a
// single command sequence at a time.
type Card struct {
	mu   sync.Mutex
	spi  SPI
	cs   ChipSelect
	info Info
}

// New returns a Card on the given transport. The card is not touched until
// Initialize is called.
func New(spi SPI, cs ChipSelect) *Card {
	return &Card{spi: spi, cs: cs}
}

// Info returns the card information gathered by Initialize. Before a
// successful Initialize all fields report their NA values.
func (c *Card) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Initialize runs the power-on handshake: at least 74 clocks with the card
// deselected, CMD0 until the card reports idle, CMD8 to agree on the
// voltage range and to learn the card version, CMD58 to verify the OCR
// voltage window, then CMD55+ACMD41 until the card leaves idle state.
// Version 2 cards get a second CMD58 to read the capacity class bit.
func (c *Card) Initialize() (Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.powerOnClocks(); err != nil {
		return Info{}, checkpoint.From(err)
	}

	if err := c.reset(); err != nil {
		return Info{}, checkpoint.Wrap(err, ErrInitReset)
	}

	version, err := c.checkInterfaceCondition()
	if err != nil {
		return Info{}, checkpoint.Wrap(err, ErrInitVoltageCheck)
	}
	c.info.Version = version

	if err := c.readOCR(true); err != nil {
		return Info{}, checkpoint.Wrap(err, ErrInitOCRRead)
	}

	if err := c.appInit(); err != nil {
		return Info{}, checkpoint.Wrap(err, ErrInitAppInit)
	}

	if version == Version1 {
		// A version 1 card that completes ACMD41 is standard capacity.
		c.info.Capacity = SDSC
	} else {
		// The card is out of idle now, so the OCR read expects 0x00.
		if err := c.readOCR(false); err != nil {
			return Info{}, checkpoint.Wrap(err, ErrInitOCRRead)
		}
		if c.info.OCR[0]&(1<<6) != 0 {
			c.info.Capacity = SDHCOrSDXC
		} else {
			c.info.Capacity = SDSC
		}
	}

	return c.info, nil
}

// powerOnClocks gives the card the clock cycles it needs to enter its
// native operating state: 20 fill bytes (160 clocks, at least the required
// 74) with chip select inactive.
func (c *Card) powerOnClocks() error {
	if err := c.cs.Deselect(); err != nil {
		return err
	}
	return c.clockFill(20)
}

func (c *Card) clockFill(n int) error {
	for i := 0; i < n; i++ {
		if err := c.spi.Write(fillByte); err != nil {
			return err
		}
	}
	return nil
}

// command sends one fixed 6-byte frame: command byte, four argument bytes,
// checksum byte. The checksum is a per-command protocol constant, it is
// never recomputed.
func (c *Card) command(cmd byte, arg [4]byte, crc byte) error {
	for _, b := range []byte{cmd, arg[0], arg[1], arg[2], arg[3], crc} {
		if err := c.spi.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// select begins a command sequence, deselect ends it. The extra fill byte
// after deselect gives the card the 8 clocks it needs to release the bus.
func (c *Card) selectCard() error {
	return c.cs.Select()
}

func (c *Card) deselectCard() error {
	if err := c.cs.Deselect(); err != nil {
		return err
	}
	return c.spi.Write(fillByte)
}

// reset issues CMD0 (GO_IDLE_STATE) until the card answers idle, bounded by
// resetAttempts.
func (c *Card) reset() error {
	if err := c.selectCard(); err != nil {
		return err
	}

	acknowledged := false
	for i := 0; i < resetAttempts && !acknowledged; i++ {
		if err := c.command(0x40, [4]byte{}, 0x95); err != nil {
			return err
		}
		for j := 0; j < responseWindow; j++ {
			b, err := c.spi.Read()
			if err != nil {
				return err
			}
			if b == respIdle {
				acknowledged = true
				break
			}
		}
	}

	if err := c.deselectCard(); err != nil {
		return err
	}
	if !acknowledged {
		return ErrNoResponse
	}
	return nil
}

// checkInterfaceCondition issues CMD8 (SEND_IF_COND) carrying the voltage
// range code and check pattern. A card that echoes both back is version 2.
// A card that answers "illegal command" predates CMD8 and is version 1.
func (c *Card) checkInterfaceCondition() (Version, error) {
	if err := c.selectCard(); err != nil {
		return VersionNA, err
	}
	defer c.deselectCard()

	if err := c.command(0x48, [4]byte{0x00, 0x00, supportedVoltRange, checkPattern}, 0x87); err != nil {
		return VersionNA, err
	}

	for i := 0; i < responseWindow; i++ {
		b, err := c.spi.Read()
		if err != nil {
			return VersionNA, err
		}
		switch b {
		case respIdle:
			// R7: two reserved bytes, then the echoed voltage range and
			// check pattern.
			for j := 0; j < 2; j++ {
				if _, err := c.spi.Read(); err != nil {
					return VersionNA, err
				}
			}
			volt, err := c.spi.Read()
			if err != nil {
				return VersionNA, err
			}
			pattern, err := c.spi.Read()
			if err != nil {
				return VersionNA, err
			}
			if volt != supportedVoltRange {
				return VersionNA, ErrUnsupportedVolt
			}
			if pattern != checkPattern {
				return VersionNA, ErrCheckPattern
			}
			return Version2, nil
		case respIllegal, respIllegalCRC:
			return Version1, nil
		}
	}

	return VersionNA, ErrNoResponse
}

// readOCR issues CMD58 (READ_OCR) and stores the four register bytes.
// expectIdle selects which R1 value counts as the valid response: 0x01
// during initialization, 0x00 afterwards. The voltage window bits 15-23
// must all be set, anything else makes the card unusable here.
func (c *Card) readOCR(expectIdle bool) error {
	if err := c.selectCard(); err != nil {
		return err
	}
	defer c.deselectCard()

	if err := c.command(0x7A, [4]byte{}, 0xFD); err != nil {
		return err
	}

	want := byte(respNotIdle)
	if expectIdle {
		want = respIdle
	}

	for i := 0; i < responseWindow; i++ {
		b, err := c.spi.Read()
		if err != nil {
			return err
		}
		switch {
		case (b == respIllegal || b == respIllegalCRC) && c.info.Version == Version1:
			return ErrNoResponse
		case b == want:
			var ocr [4]byte
			for j := range ocr {
				if ocr[j], err = c.spi.Read(); err != nil {
					return err
				}
			}
			c.info.OCR = ocr
			// Byte 1 covers 2.8-3.6V, bit 15 in byte 2 covers 2.7-2.8V.
			if ocr[1] != 0xFF || ocr[2]&0x80 == 0 {
				return ErrUnsupportedVolt
			}
			return nil
		}
	}

	return ErrNoResponse
}

// appInit repeats the CMD55 (APP_CMD) + ACMD41 (SD_SEND_OP_COND) pair until
// the card reports not-idle, which completes initialization. ACMD41
// advertises SDHC/SDXC host support in its argument.
func (c *Card) appInit() error {
	for {
		if err := c.appCommandMarker(); err != nil {
			return err
		}

		done, err := c.sendOpCond()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Card) appCommandMarker() error {
	if err := c.selectCard(); err != nil {
		return err
	}
	defer c.deselectCard()

	if err := c.command(0x77, [4]byte{}, 0x65); err != nil {
		return err
	}

	for i := 0; i < responseWindow; i++ {
		b, err := c.spi.Read()
		if err != nil {
			return err
		}
		if b == respIdle || b == respNotIdle {
			return nil
		}
	}
	return ErrNoResponse
}

func (c *Card) sendOpCond() (done bool, err error) {
	if err := c.selectCard(); err != nil {
		return false, err
	}
	defer c.deselectCard()

	if err := c.command(0x69, [4]byte{0x40, 0x00, 0x00, 0x00}, 0x77); err != nil {
		return false, err
	}

	for i := 0; i < responseWindow; i++ {
		b, err := c.spi.Read()
		if err != nil {
			return false, err
		}
		switch b {
		case respIdle:
			return false, nil
		case respNotIdle:
			return true, nil
		}
	}
	return false, ErrNoResponse
}

// blockAddress frames an absolute block address for the wire, MSB first.
func blockAddress(address uint32) [4]byte {
	return addr.Bytes(address)
}
