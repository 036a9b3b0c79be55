package sdfat

// Device is single-block storage addressed by absolute 512-byte block
// address. sdcard.Card implements it for real hardware, FileDevice serves
// filesystem images. It also exists to be able to mock the storage in tests.
// Generated mock using mockgen:
//
//	mockgen -source=device.go -destination=device_mock.go -package sdfat
type Device interface {
	ReadBlock(address uint32, blk *Block) error
	WriteBlock(address uint32, blk *Block) error
}
