package amf

// AMF0 markers.
const (
	amf0Number      = 0x00
	amf0Boolean     = 0x01
	amf0String      = 0x02
	amf0Object      = 0x03
	amf0Movieclip   = 0x04
	amf0Null        = 0x05
	amf0Undefined   = 0x06
	amf0Reference   = 0x07
	amf0ECMAArray   = 0x08
	amf0ObjectEnd   = 0x09
	amf0StrictArray = 0x0a
	amf0Date        = 0x0b
	amf0LongString  = 0x0c
	amf0Unsupported = 0x0d
	amf0Recordset   = 0x0e
	amf0XMLDocument = 0x0f
	amf0TypedObject = 0x10
	amf0AMF3        = 0x11
)

// AMF3 markers.
const (
	amf3Undefined    = 0x00
	amf3Null         = 0x01
	amf3False        = 0x02
	amf3True         = 0x03
	amf3Integer      = 0x04
	amf3Double       = 0x05
	amf3String       = 0x06
	amf3XMLDocument  = 0x07
	amf3Date         = 0x08
	amf3Array        = 0x09
	amf3Object       = 0x0a
	amf3XML          = 0x0b
	amf3ByteArray    = 0x0c
	amf3IntVector    = 0x0d
	amf3UintVector   = 0x0e
	amf3DoubleVector = 0x0f
	amf3ObjectVector = 0x10
	amf3Dictionary   = 0x11
)

const markerCount = 0x12

// Undefined is ActionScript's undefined.
type Undefined struct{}

// XMLDocument is a legacy flash.xml.XMLDocument, carried as text.
type XMLDocument string

// XML is an E4X XML object, carried as text.
// In AMF0, which has no E4X type, it is written as an XMLDocument.
type XML string

// RawBinary is written to the stream verbatim, in place of a value.
// It lets pre-encoded values be embedded, and is never produced by decoding.
type RawBinary []byte

// IntVector is an ActionScript Vector.<int>.
type IntVector struct {
	Fixed bool
	Items []int32
}

// UintVector is an ActionScript Vector.<uint>.
type UintVector struct {
	Fixed bool
	Items []uint32
}

// DoubleVector is an ActionScript Vector.<Number>.
type DoubleVector struct {
	Fixed bool
	Items []float64
}

// ObjectVector is an ActionScript Vector of objects.
// TypeName is the element class name; it is not checked against the items.
type ObjectVector struct {
	Fixed    bool
	TypeName string
	Items    []any
}
