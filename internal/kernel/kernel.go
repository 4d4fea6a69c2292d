// Package kernel implements the transactional operation executor: one
// handler per operation name, each run inside a single store.WithTx call
// that commits on success and rolls back only on an uncaught error.
// Validation and domain failures are caught inside the handler and
// returned as structured Results without aborting the transaction.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Taj-Howe/planner-kernel/internal/idgen"
	"github.com/Taj-Howe/planner-kernel/internal/log"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
	"github.com/Taj-Howe/planner-kernel/internal/validation"
)

// DomainError is the structured {code, message} error kind for the three
// named invariant violations.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

const (
	CodeBlocked              = "BLOCKED"
	CodeTimerAlreadyRunning  = "TIMER_ALREADY_RUNNING"
	CodeNoRunningTimer       = "NO_RUNNING_TIMER"
)

// Envelope is the {kind:"op", ...} request shape.
type Envelope struct {
	Name      string
	Args      map[string]any
	OpID      string
	OpName    string
	ActorType string
	ActorID   string
	TS        int64
}

// Result is the uniform {ok, result?, error?, warnings?, invalidate?[]}
// operation response.
type Result struct {
	OK         bool     `json:"ok"`
	Result     any      `json:"result,omitempty"`
	Error      any      `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Invalidate []string `json:"invalidate,omitempty"`
}

func ok(result any, invalidate ...string) Result {
	return Result{OK: true, Result: result, Invalidate: invalidate}
}

func fail(err error) Result {
	if de, isDomain := err.(*DomainError); isDomain {
		return Result{OK: false, Error: map[string]string{"code": de.Code, "message": de.Message}}
	}
	return Result{OK: false, Error: err.Error()}
}

// Clock is injected so tests can control "now"; defaults to time.Now.
type Clock func() time.Time

// Kernel is the Operation Executor, bound to one store.
type Kernel struct {
	Store store.Store
	Now   Clock
}

// New builds a Kernel with the real wall clock.
func New(s store.Store) *Kernel {
	return &Kernel{Store: s, Now: time.Now}
}

func (k *Kernel) nowMillis() int64 {
	return k.Now().UnixMilli()
}

type handlerFunc func(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error)

var handlers = map[string]handlerFunc{
	"create_item":            handleCreateItem,
	"update_item_fields":     handleUpdateItemFields,
	"set_status":             handleSetStatus,
	"scheduled_block.create": handleCreateBlock,
	"create_block":           handleCreateBlock,
	"scheduled_block.update": handleUpdateBlock,
	"move_block":             handleUpdateBlock,
	"resize_block":           handleUpdateBlock,
	"scheduled_block.delete": handleDeleteBlock,
	"delete_block":           handleDeleteBlock,
	"item.archive":           handleArchiveOne,
	"items.archive_many":     handleArchiveMany,
	"item.restore":           handleRestoreOne,
	"items.restore_many":     handleRestoreMany,
	"delete_item":            handleDeleteOne,
	"items.delete_many":      handleDeleteMany,
	"reorder_item":           handleReorderItem,
	"move_item":               handleMoveItem,
	"add_time_entry":         handleAddTimeEntry,
	"start_timer":            handleStartTimer,
	"stop_timer":             handleStopTimer,
	"dependency.create":      handleDependencyCreate,
	"add_dependency":         handleDependencyCreate,
	"dependency.update":      handleDependencyUpdate,
	"dependency.delete":      handleDependencyDelete,
	"remove_dependency":      handleDependencyDelete,
	"add_blocker":            handleAddBlocker,
	"clear_blocker":          handleClearBlocker,
	"set_item_tags":          handleSetItemTags,
	"user.create":            handleUserCreate,
	"user.update":            handleUserUpdate,
	"item.set_assignee":      handleSetAssignee,
	"set_item_assignees":     handleSetAssignee,
	"set_setting":            handleSetSetting,
	"export_data":            handleExportData,
	"import_data":            handleImportData,
}

// Execute runs the named operation inside a single write transaction and
// appends the audit log entry for both success and failure inside that
// same transaction. A handler error becomes a failed Result and the
// transaction still commits, so the failed op's log entry is kept; only a
// failed audit-log write or commit rolls the transaction back.
func (k *Kernel) Execute(ctx context.Context, env Envelope) Result {
	h, known := handlers[env.Name]
	if !known {
		return fail(fmt.Errorf("Unknown query|operation: %s", env.Name))
	}

	var res Result
	txErr := k.Store.WithTx(ctx, func(tx store.Tx) error {
		result, invalidate, opErr := h(ctx, k, tx, env)
		if opErr != nil {
			res = fail(opErr)
		} else {
			res = ok(result, invalidate...)
		}

		argsJSON, _ := json.Marshal(env.Args)
		resultJSON, _ := json.Marshal(res)
		entry := &types.AuditLogEntry{
			LogID:      idgen.New(),
			OpID:       env.OpID,
			OpName:     env.Name,
			Actor:      env.ActorID,
			TS:         env.TS,
			ArgsJSON:   string(argsJSON),
			ResultJSON: string(resultJSON),
		}
		if auditErr := tx.AppendAuditLog(ctx, entry); auditErr != nil {
			log.L().Errorw("append audit log failed", "op", env.Name, "err", auditErr)
			return auditErr
		}
		return nil
	})
	if txErr != nil {
		return fail(txErr)
	}
	return res
}

// validationErr adapts a *validation.Error to the plain-text error shape
// the router surfaces as {ok:false, error:"<field> must ..."}.
func validationErr(err error) error {
	if err == nil {
		return nil
	}
	var ve *validation.Error
	if asValidation(err, &ve) {
		return ve
	}
	return err
}

func asValidation(err error, target **validation.Error) bool {
	ve, ok := err.(*validation.Error)
	if ok {
		*target = ve
	}
	return ok
}
