package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"synthchain/crypto"
	nativecommon "synthchain/native/common"
	"synthchain/native/oracle"
	"synthchain/native/synth"
	"synthchain/native/token"
)

const (
	codeSynthNotFound   = -32031
	codeSynthConflict   = -32032
	codeSynthPaused     = -32033
	codeSynthForbidden  = -32034
	codeSynthCollateral = -32035
	codeSynthOracle     = -32036
	codeSynthOverflow   = -32037
)

type createAssetParams struct {
	Name               string `json:"name"`
	Symbol             string `json:"symbol"`
	Decimals           uint8  `json:"decimals"`
	Authority          string `json:"authority"`
	CollateralMint     string `json:"collateralMint"`
	CollateralRatioBps uint64 `json:"collateralRatioBps"`
}

type mintParams struct {
	Caller           string `json:"caller"`
	Symbol           string `json:"symbol"`
	Amount           string `json:"amount"`
	CollateralAmount string `json:"collateralAmount"`
}

type burnParams struct {
	Caller string `json:"caller"`
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

type symbolParams struct {
	Symbol string `json:"symbol"`
}

type pauseParams struct {
	Caller string `json:"caller"`
	Symbol string `json:"symbol"`
}

type balanceParams struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
}

type assetJSON struct {
	Name               string `json:"name"`
	Symbol             string `json:"symbol"`
	Decimals           uint8  `json:"decimals"`
	Authority          string `json:"authority"`
	CollateralMint     string `json:"collateralMint"`
	SyntheticMint      string `json:"syntheticMint"`
	Vault              string `json:"vault"`
	CollateralRatioBps uint64 `json:"collateralRatioBps"`
	TotalSupply        string `json:"totalSupply"`
	Paused             bool   `json:"paused"`
	CreatedAt          int64  `json:"createdAt"`
}

type mintResultJSON struct {
	Asset              assetJSON `json:"asset"`
	Minted             string    `json:"minted"`
	CollateralLocked   string    `json:"collateralLocked"`
	RequiredCollateral string    `json:"requiredCollateral"`
	Rate               string    `json:"rate"`
}

type burnResultJSON struct {
	Asset              assetJSON `json:"asset"`
	Burned             string    `json:"burned"`
	CollateralReturned string    `json:"collateralReturned"`
	Rate               string    `json:"rate"`
}

type balanceJSON struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Balance string `json:"balance"`
}

func assetToJSON(a *synth.SyntheticAsset) assetJSON {
	return assetJSON{
		Name:               a.Name,
		Symbol:             a.Symbol,
		Decimals:           a.Decimals,
		Authority:          a.Authority.String(),
		CollateralMint:     a.CollateralMint,
		SyntheticMint:      a.SyntheticMint,
		Vault:              a.Vault().String(),
		CollateralRatioBps: a.CollateralRatioBps,
		TotalSupply:        strconv.FormatUint(a.TotalSupply, 10),
		Paused:             a.Paused,
		CreatedAt:          a.CreatedAt,
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return errors.New("params object required")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAmount(field, raw string) (uint64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, errors.New(field + " required")
	}
	value, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, errors.New(field + " must be an unsigned decimal integer")
	}
	return value, nil
}

func parseAddress(field, raw string) (crypto.Address, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(raw))
	if err != nil {
		return crypto.Address{}, errors.New(field + " is not a valid address")
	}
	return addr, nil
}

// mapEngineError translates engine sentinels into transport codes.
func mapEngineError(err error) (int, int, string) {
	switch {
	case errors.Is(err, synth.ErrAssetNotFound):
		return http.StatusNotFound, codeSynthNotFound, "asset not found"
	case errors.Is(err, synth.ErrAssetExists):
		return http.StatusConflict, codeSynthConflict, "asset already exists"
	case errors.Is(err, synth.ErrAssetPaused), errors.Is(err, nativecommon.ErrModulePaused):
		return http.StatusConflict, codeSynthPaused, "asset paused"
	case errors.Is(err, synth.ErrNotAuthority), errors.Is(err, token.ErrUnauthorized):
		return http.StatusForbidden, codeSynthForbidden, "caller not authorized"
	case errors.Is(err, synth.ErrInsufficientCollateral), errors.Is(err, token.ErrInsufficientFunds):
		return http.StatusConflict, codeSynthCollateral, "insufficient collateral"
	case errors.Is(err, oracle.ErrPriceUnavailable):
		return http.StatusServiceUnavailable, codeSynthOracle, "price unavailable"
	case errors.Is(err, synth.ErrOverflow):
		return http.StatusBadRequest, codeSynthOverflow, "amount out of range"
	case errors.Is(err, synth.ErrNameTooLong),
		errors.Is(err, synth.ErrSymbolTooLong),
		errors.Is(err, synth.ErrInvalidDecimals),
		errors.Is(err, synth.ErrInvalidRatio),
		errors.Is(err, synth.ErrInvalidAmount),
		errors.Is(err, synth.ErrInvalidCollateralAmount),
		errors.Is(err, synth.ErrUnknownCollateral),
		errors.Is(err, token.ErrInvalidAmount),
		errors.Is(err, token.ErrInvalidMint),
		errors.Is(err, token.ErrInvalidAddress):
		return http.StatusBadRequest, codeInvalidParams, "invalid params"
	default:
		return http.StatusInternalServerError, codeServerError, "internal error"
	}
}

func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	status, code, message := mapEngineError(err)
	writeError(w, status, id, code, message, err.Error())
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, req *RPCRequest) {
	var params createAssetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	authority, err := parseAddress("authority", params.Authority)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	asset, err := s.engine.CreateAsset(synth.CreateParams{
		Name:               params.Name,
		Symbol:             params.Symbol,
		Decimals:           params.Decimals,
		Authority:          authority,
		CollateralMint:     params.CollateralMint,
		CollateralRatioBps: params.CollateralRatioBps,
	})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, assetToJSON(asset))
}

func (s *Server) handleMint(w http.ResponseWriter, req *RPCRequest) {
	var params mintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	collateral, err := parseAmount("collateralAmount", params.CollateralAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	result, err := s.engine.Mint(caller, params.Symbol, amount, collateral)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, mintResultJSON{
		Asset:              assetToJSON(result.Asset),
		Minted:             strconv.FormatUint(result.Minted, 10),
		CollateralLocked:   strconv.FormatUint(result.CollateralLocked, 10),
		RequiredCollateral: strconv.FormatUint(result.RequiredCollateral, 10),
		Rate:               result.Rate,
	})
}

func (s *Server) handleBurn(w http.ResponseWriter, req *RPCRequest) {
	var params burnParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	result, err := s.engine.Burn(caller, params.Symbol, amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, burnResultJSON{
		Asset:              assetToJSON(result.Asset),
		Burned:             strconv.FormatUint(result.Burned, 10),
		CollateralReturned: strconv.FormatUint(result.CollateralReturned, 10),
		Rate:               result.Rate,
	})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, req *RPCRequest) {
	var params symbolParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	asset, err := s.engine.GetAsset(params.Symbol)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, assetToJSON(asset))
}

func (s *Server) handleListAssets(w http.ResponseWriter, req *RPCRequest) {
	assets, err := s.engine.ListAssets()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	out := make([]assetJSON, 0, len(assets))
	for _, asset := range assets {
		out = append(out, assetToJSON(asset))
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handlePause(w http.ResponseWriter, req *RPCRequest, paused bool) {
	var params pauseParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	var asset *synth.SyntheticAsset
	if paused {
		asset, err = s.engine.Pause(caller, params.Symbol)
	} else {
		asset, err = s.engine.Resume(caller, params.Symbol)
	}
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, assetToJSON(asset))
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	balance, err := s.engine.BalanceOf(addr, params.Mint)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceJSON{
		Address: addr.String(),
		Mint:    strings.ToUpper(strings.TrimSpace(params.Mint)),
		Balance: strconv.FormatUint(balance, 10),
	})
}
