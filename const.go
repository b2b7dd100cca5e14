package zkudp

const (
	DefaultPort = 4370

	USHRT_MAX = 65535

	// A bulk-transfer datagram of exactly this size means more follow.
	MaxChunkSize = 1032

	// ticks value mixed into the auth key
	commKeyTicks = 50
)

// Commands
const (
	CMD_CONNECT       = 1000
	CMD_EXIT          = 1001
	CMD_ENABLEDEVICE  = 1002
	CMD_DISABLEDEVICE = 1003
	CMD_RESTART       = 1004
	CMD_POWEROFF      = 1005
	CMD_SLEEP         = 1006
	CMD_RESUME        = 1007
	CMD_CAPTUREFINGER = 1009
	CMD_TEST_TEMP     = 1011
	CMD_CAPTUREIMAGE  = 1012
	CMD_REFRESHDATA   = 1013
	CMD_REFRESHOPTION = 1014
	CMD_TESTVOICE     = 1017
	CMD_GET_VERSION   = 1100
	CMD_CHANGE_SPEED  = 1101
	CMD_AUTH          = 1102

	CMD_PREPARE_DATA = 1500
	CMD_DATA         = 1501
	CMD_FREE_DATA    = 1502
	CMD_DATA_WRRQ    = 1503
	CMD_DATA_RDY     = 1504

	CMD_USER_WRQ        = 8
	CMD_USERTEMP_RRQ    = 9
	CMD_USERTEMP_WRQ    = 10
	CMD_OPTIONS_RRQ     = 11
	CMD_OPTIONS_WRQ     = 12
	CMD_ATTLOG_RRQ      = 13
	CMD_CLEAR_DATA      = 14
	CMD_CLEAR_ATTLOG    = 15
	CMD_DELETE_USER     = 18
	CMD_DELETE_USERTEMP = 19
	CMD_CLEAR_ADMIN     = 20
	CMD_CLEAR_OPLOG     = 33
	CMD_GET_FREE_SIZES  = 50
	CMD_STARTVERIFY     = 60
	CMD_STARTENROLL     = 61
	CMD_CANCELCAPTURE   = 62
	CMD_STATE_RRQ       = 64
	CMD_WRITE_LCD       = 66
	CMD_CLEAR_LCD       = 67
	CMD_TMP_WRITE       = 87
	CMD_CHECKSUM_BUFFER = 119
	CMD_DEL_FPTMP       = 134
	CMD_GET_TIME        = 201
	CMD_SET_TIME        = 202
	CMD_REG_EVENT       = 500
)

// Reply codes
const (
	CMD_ACK_OK         = 2000
	CMD_ACK_ERROR      = 2001
	CMD_ACK_DATA       = 2002
	CMD_ACK_RETRY      = 2003
	CMD_ACK_REPEAT     = 2004
	CMD_ACK_UNAUTH     = 2005
	CMD_ACK_UNKNOWN    = 0xffff
	CMD_ACK_ERROR_CMD  = 0xfffd
	CMD_ACK_ERROR_INIT = 0xfffc
	CMD_ACK_ERROR_DATA = 0xfffb
)

// Realtime event flags for CMD_REG_EVENT
const (
	EF_ATTLOG       = 1
	EF_FINGER       = 1 << 1
	EF_ENROLLUSER   = 1 << 2
	EF_ENROLLFINGER = 1 << 3
	EF_BUTTON       = 1 << 4
	EF_UNLOCK       = 1 << 5
	EF_VERIFY       = 1 << 7
	EF_FPFTR        = 1 << 8
	EF_ALARM        = 1 << 9
)

// Fingerprint template flags
const (
	FP_FLAG_EMPTY  = 0
	FP_FLAG_VALID  = 1
	FP_FLAG_DURESS = 3
)

const (
	userRecordSize       = 72
	attendanceRecordSize = 40
	deviceStatusSize     = 92
	firstChunkHeaderSize = 12
)

var replyNames = map[ReplyCode]string{
	CMD_ACK_OK:         "ACK_OK",
	CMD_ACK_ERROR:      "ACK_ERROR",
	CMD_ACK_DATA:       "ACK_DATA",
	CMD_ACK_RETRY:      "ACK_RETRY",
	CMD_ACK_REPEAT:     "ACK_REPEAT",
	CMD_ACK_UNAUTH:     "ACK_UNAUTH",
	CMD_ACK_UNKNOWN:    "ACK_UNKNOWN",
	CMD_ACK_ERROR_CMD:  "ACK_ERROR_CMD",
	CMD_ACK_ERROR_INIT: "ACK_ERROR_INIT",
	CMD_ACK_ERROR_DATA: "ACK_ERROR_DATA",
	CMD_PREPARE_DATA:   "PREPARE_DATA",
	CMD_DATA:           "DATA",
	CMD_REG_EVENT:      "REG_EVENT",
}
