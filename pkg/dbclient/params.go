package dbclient

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/mitchellh/mapstructure"
)

// SysprmErr mirrors the server's SYSPRM_ERR enum as far as the client
// branches on it.
type SysprmErr int

const (
	SysprmOK SysprmErr = iota
	SysprmErrBadValue
	SysprmErrBadName
	SysprmErrNotForClient
)

// ServerParameters is the assignment list sent to
// change_server_parameters; it is not validated client-side.
type ServerParameters map[string]string

var paramValidator = validator.New()

// ChangeServerParameters packs an assignment list and applies it
// server-side.
func (c *Connection) ChangeServerParameters(ctx context.Context, params ServerParameters) (SysprmErr, error) {
	w := wire.NewWriter(128)
	w.PackInt32(int32(len(params)))
	for k, v := range params {
		if err := w.PackStringLengthPrefixed(k); err != nil {
			return SysprmErrBadName, err
		}
		if err := w.PackStringLengthPrefixed(v); err != nil {
			return SysprmErrBadValue, err
		}
	}

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpChangeServerParameters, [][]byte{w.Bytes()})
	if err != nil {
		return SysprmErrNotForClient, err
	}
	return SysprmErr(pkt.Header.RC), nil
}

// ObtainServerParameters fetches the named parameters and decodes them into
// dst (a pointer to a struct tagged for mapstructure). A non-zero server RC
// is returned as the SysprmErr with dst untouched; a decode or validation
// failure may leave dst partly or fully written.
func (c *Connection) ObtainServerParameters(ctx context.Context, names []string, dst any) (SysprmErr, error) {
	w := wire.NewWriter(64)
	w.PackInt32(int32(len(names)))
	for _, n := range names {
		if err := w.PackStringLengthPrefixed(n); err != nil {
			return SysprmErrBadName, err
		}
	}

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpObtainServerParameters, [][]byte{w.Bytes()})
	if err != nil {
		return SysprmErrNotForClient, err
	}
	if pkt.Header.RC != 0 {
		return SysprmErr(pkt.Header.RC), nil
	}

	values, err := decodeParameterValues(pkt)
	if err != nil {
		return SysprmErrBadValue, err
	}
	if err := mapstructure.Decode(values, dst); err != nil {
		return SysprmErrBadValue, fmt.Errorf("dbclient: decode server parameters: %w", err)
	}
	if err := paramValidator.Struct(dst); err != nil {
		return SysprmErrBadValue, fmt.Errorf("dbclient: validate server parameters: %w", err)
	}
	return SysprmOK, nil
}

// GetForceServerParameters fetches only the parameters flagged as
// server-forced (PRM_FORCE_SERVER), decoding them the same way
// ObtainServerParameters does.
func (c *Connection) GetForceServerParameters(ctx context.Context, dst any) error {
	values, err := c.FetchForceServerParametersRaw(ctx)
	if err != nil {
		return err
	}
	if err := mapstructure.Decode(values, dst); err != nil {
		return fmt.Errorf("dbclient: decode forced server parameters: %w", err)
	}
	return paramValidator.Struct(dst)
}

// FetchForceServerParametersRaw fetches the server-forced parameters as a
// plain name/value map, without decoding into a caller-supplied struct.
// pkg/paramcache uses this to populate its local cache.
func (c *Connection) FetchForceServerParametersRaw(ctx context.Context) (map[string]string, error) {
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpGetForceServerParameters, nil)
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, rcError("get_force_server_parameters", pkt.Header.RC)
	}
	return decodeParameterValues(pkt)
}

func decodeParameterValues(pkt *dispatch.Packet) (map[string]string, error) {
	buf, err := pkt.GetBuffer(0, -1, false)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader(buf)
	count, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, count)
	for i := int32(0); i < count; i++ {
		k, err := r.UnpackStringLengthPrefixed()
		if err != nil {
			return nil, err
		}
		v, err := r.UnpackStringLengthPrefixed()
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}
