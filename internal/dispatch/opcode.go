// Package dispatch implements the request dispatcher: one-shot
// request/reply, split send/recv for large lockset payloads, and stream
// receive for dump commands, over a single declarative opcode table so pack
// and unpack cannot drift apart for a given opcode.
package dispatch

// Opcode identifies a NET_SERVER_* request. The numeric values are a closed
// enumeration that must match the server build; they are not renumbered
// here, only named.
type Opcode uint32

const (
	OpLocatorFetch Opcode = iota + 1
	OpLocatorForce
	OpLocatorReplForce
	OpLocatorFetchLockSet
	OpLocatorFetchLockHintClasses
	OpLocatorFindClassOID
	OpLocatorReserveClassNames
	OpLocatorDeleteClassName
	OpLocatorRenameClassName
	OpLocatorAssignOID
	OpHeapCreate
	OpHeapDestroy
	OpBtreeAddIndex
	OpBtreeFindUnique
	OpBtreeLoadData
	OpBtreeDeleteIndex
	OpTranServerCommit
	OpTranServerAbort
	OpTranServerSavepoint
	OpTranServerPartialAbort
	OpLogResetWaitMsecs
	OpLogCheckpoint
	OpLogSetSuppressRepl
	OpSessionFindOrCreate
	OpSessionEnd
	OpChangeServerParameters
	OpObtainServerParameters
	OpGetForceServerParameters
	OpStatsGetStatistics
	OpStatsUpdateStatistics
	OpMntCopyStats
	OpMntGlobalStats
	OpLogTbGetPackTranTable
	OpQmgrPrepareQuery
	OpQmgrExecuteQuery
	OpQfileGetListFilePage
	OpQmgrEndQuery
	OpQmgrDropQueryPlan
	OpQmgrDropAllQueryPlans
	OpBackupPrepare
	OpBackupVolume
	OpBackupLogVolume
	OpLockDump
	OpStatDump
	OpParamDump
	OpPlanDump
)

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "UNKNOWN_OPCODE"
}

var opcodeNames = map[Opcode]string{
	OpLocatorFetch:                 "NET_SERVER_LC_FETCH",
	OpLocatorForce:                 "NET_SERVER_LC_FORCE",
	OpLocatorReplForce:             "NET_SERVER_LC_REPL_FORCE",
	OpLocatorFetchLockSet:          "NET_SERVER_LC_FETCH_LOCKSET",
	OpLocatorFetchLockHintClasses:  "NET_SERVER_LC_FETCH_LOCKHINT_CLASSES",
	OpLocatorFindClassOID:          "NET_SERVER_LC_FIND_CLASSOID",
	OpLocatorReserveClassNames:     "NET_SERVER_LC_RESERVE_CLASSNAME",
	OpLocatorDeleteClassName:       "NET_SERVER_LC_DELETE_CLASSNAME",
	OpLocatorRenameClassName:       "NET_SERVER_LC_RENAME",
	OpLocatorAssignOID:             "NET_SERVER_LC_ASSIGN_OID",
	OpHeapCreate:                   "NET_SERVER_HEAP_CREATE",
	OpHeapDestroy:                  "NET_SERVER_HEAP_DESTROY",
	OpBtreeAddIndex:                "NET_SERVER_BTREE_ADDINDEX",
	OpBtreeFindUnique:              "NET_SERVER_BTREE_FIND_UNIQUE",
	OpBtreeLoadData:                "NET_SERVER_BTREE_LOADDATA",
	OpBtreeDeleteIndex:             "NET_SERVER_BTREE_DELINDEX",
	OpTranServerCommit:             "NET_SERVER_TM_SERVER_COMMIT",
	OpTranServerAbort:              "NET_SERVER_TM_SERVER_ABORT",
	OpTranServerSavepoint:          "NET_SERVER_TM_SERVER_SAVEPOINT",
	OpTranServerPartialAbort:       "NET_SERVER_TM_SERVER_PARTIAL_ABORT",
	OpLogResetWaitMsecs:            "NET_SERVER_LOG_RESET_WAIT_MSECS",
	OpLogCheckpoint:                "NET_SERVER_LOG_CHECKPOINT",
	OpLogSetSuppressRepl:           "NET_SERVER_LOG_SET_SUPPRESS_REPL",
	OpSessionFindOrCreate:          "NET_SERVER_CSS_FIND_OR_CREATE_SESSION",
	OpSessionEnd:                   "NET_SERVER_CSS_END_SESSION",
	OpChangeServerParameters:       "NET_SERVER_PRM_SET_PARAMETERS",
	OpObtainServerParameters:       "NET_SERVER_PRM_GET_PARAMETERS",
	OpGetForceServerParameters:     "NET_SERVER_PRM_GET_FORCE_PARAMETERS",
	OpStatsGetStatistics:           "NET_SERVER_QST_GET_STATISTICS",
	OpStatsUpdateStatistics:        "NET_SERVER_QST_UPDATE_STATISTICS",
	OpMntCopyStats:                 "NET_SERVER_MNT_SERVER_COPY_STATS",
	OpMntGlobalStats:               "NET_SERVER_MNT_SERVER_GLOBAL_STATS",
	OpLogTbGetPackTranTable:        "NET_SERVER_LOG_GETPACK_TRANTB",
	OpQmgrPrepareQuery:             "NET_SERVER_QM_PREPARE",
	OpQmgrExecuteQuery:             "NET_SERVER_QM_EXECUTE",
	OpQfileGetListFilePage:         "NET_SERVER_LS_GET_LIST_FILE_PAGE",
	OpQmgrEndQuery:                 "NET_SERVER_QM_QUERY_END",
	OpQmgrDropQueryPlan:            "NET_SERVER_QM_QUERY_DROP_PLAN",
	OpQmgrDropAllQueryPlans:        "NET_SERVER_QM_QUERY_DROP_ALL_PLANS",
	OpBackupPrepare:                "NET_SERVER_BO_PREPARE_BACKUP",
	OpBackupVolume:                 "NET_SERVER_BO_BACKUP_VOLUME",
	OpBackupLogVolume:              "NET_SERVER_BO_BACKUP_LOG_VOLUME",
	OpLockDump:                     "NET_SERVER_LK_DUMP",
	OpStatDump:                     "NET_SERVER_CSS_SERVER_STAT_DUMP",
	OpParamDump:                    "NET_SERVER_PRM_DUMP",
	OpPlanDump:                     "NET_SERVER_QM_QUERY_DUMP_PLAN",
}

// Shape describes how many request buffers an opcode's caller supplies and
// how many variable-size reply buffers its reply header declares sizes for,
// the declarative description the dispatcher consumes so pack and unpack
// cannot drift.
type Shape struct {
	Opcode       Opcode
	Name         string
	NReqBufs     int
	NReplyBufs   int
	Split        bool // uses send_msg/recv_msg instead of one-shot dispatch
	Stream       bool // uses recv_stream instead of a sized reply
}

// Table is the single declarative { opcode, request_shape, reply_shape }
// description consumed by Dispatch, built once at init() the way the
// teacher's NfsDispatchTable is.
var Table map[Opcode]*Shape

func init() {
	entries := []*Shape{
		{Opcode: OpLocatorFetch, NReqBufs: 1, NReplyBufs: 1},
		{Opcode: OpLocatorForce, NReqBufs: 2, NReplyBufs: 0},
		{Opcode: OpLocatorReplForce, NReqBufs: 2, NReplyBufs: 1},
		{Opcode: OpLocatorFetchLockSet, NReqBufs: 1, NReplyBufs: 2, Split: true},
		{Opcode: OpLocatorFetchLockHintClasses, NReqBufs: 1, NReplyBufs: 2, Split: true},
		{Opcode: OpLocatorFindClassOID, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpLocatorReserveClassNames, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpLocatorDeleteClassName, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpLocatorRenameClassName, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpLocatorAssignOID, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpHeapCreate, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpHeapDestroy, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpBtreeAddIndex, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpBtreeFindUnique, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpBtreeLoadData, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpBtreeDeleteIndex, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpTranServerCommit, NReqBufs: 0, NReplyBufs: 0},
		{Opcode: OpTranServerAbort, NReqBufs: 0, NReplyBufs: 0},
		{Opcode: OpTranServerSavepoint, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpTranServerPartialAbort, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpLogResetWaitMsecs, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpLogCheckpoint, NReqBufs: 0, NReplyBufs: 0},
		{Opcode: OpLogSetSuppressRepl, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpSessionFindOrCreate, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpSessionEnd, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpChangeServerParameters, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpObtainServerParameters, NReqBufs: 1, NReplyBufs: 1},
		{Opcode: OpGetForceServerParameters, NReqBufs: 0, NReplyBufs: 1},
		{Opcode: OpStatsGetStatistics, NReqBufs: 1, NReplyBufs: 1},
		{Opcode: OpStatsUpdateStatistics, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpMntCopyStats, NReqBufs: 0, NReplyBufs: 1},
		{Opcode: OpMntGlobalStats, NReqBufs: 0, NReplyBufs: 1},
		{Opcode: OpLogTbGetPackTranTable, NReqBufs: 1, NReplyBufs: 1},
		{Opcode: OpQmgrPrepareQuery, NReqBufs: 2, NReplyBufs: 2},
		{Opcode: OpQmgrExecuteQuery, NReqBufs: 2, NReplyBufs: 3},
		{Opcode: OpQfileGetListFilePage, NReqBufs: 1, NReplyBufs: 1},
		{Opcode: OpQmgrEndQuery, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpQmgrDropQueryPlan, NReqBufs: 1, NReplyBufs: 0},
		{Opcode: OpQmgrDropAllQueryPlans, NReqBufs: 0, NReplyBufs: 0},
		{Opcode: OpBackupPrepare, NReqBufs: 1, NReplyBufs: 1},
		{Opcode: OpBackupVolume, NReqBufs: 1, NReplyBufs: 0, Stream: true},
		{Opcode: OpBackupLogVolume, NReqBufs: 1, NReplyBufs: 0, Stream: true},
		{Opcode: OpLockDump, NReqBufs: 0, NReplyBufs: 0, Stream: true},
		{Opcode: OpStatDump, NReqBufs: 0, NReplyBufs: 0, Stream: true},
		{Opcode: OpParamDump, NReqBufs: 0, NReplyBufs: 0, Stream: true},
		{Opcode: OpPlanDump, NReqBufs: 1, NReplyBufs: 0, Stream: true},
	}

	Table = make(map[Opcode]*Shape, len(entries))
	for _, e := range entries {
		e.Name = opcodeNames[e.Opcode]
		Table[e.Opcode] = e
	}
}
