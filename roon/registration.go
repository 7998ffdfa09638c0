// ABOUTME: The two-step registry handshake (info, then register) and
// ABOUTME: the token-remembered re-registration it enables
package roon

import (
	"fmt"

	"github.com/teancom/RoonKit/codec"
)

// register performs the registry info/register handshake for the
// generation gen. The register call uses an extended timeout because
// the Core may block on user approval in its UI; while waiting, inbound
// pings still arrive and drive the Registering -> AwaitingAuthorization
// transition (handleInboundRequest in recv.go) without cancelling this
// call.
func (c *Connection) register(gen int64) error {
	infoResp, err := c.sendInternal("com.roonlabs.registry:1/info", nil, c.cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("%w: info: %v", ErrRegistrationFailed, err)
	}
	if !codec.IsSuccess(infoResp.Name) {
		return fmt.Errorf("%w: info: %s", ErrRegistrationFailed, infoResp.ErrorMessage())
	}
	coreID, _ := infoResp.Body["core_id"].(string)
	if coreID == "" {
		return fmt.Errorf("%w: info response missing core_id", ErrRegistrationFailed)
	}

	token, _ := c.cfg.Tokens.Token(coreID)
	body := c.registrationBody(token)

	c.enqueue(func(cc *Connection) {
		if cc.connGen == gen {
			cc.pingsSinceRegister = 0
		}
	})

	regResp, err := c.sendInternal("com.roonlabs.registry:1/register", body, c.cfg.RegistrationTimeout)
	if err != nil {
		return fmt.Errorf("%w: register: %v", ErrRegistrationFailed, err)
	}
	if regResp.Name != "Registered" {
		return fmt.Errorf("%w: register: %s", ErrRegistrationFailed, regResp.ErrorMessage())
	}

	newCoreID, _ := regResp.Body["core_id"].(string)
	if newCoreID == "" {
		newCoreID = coreID
	}
	coreName, _ := regResp.Body["display_name"].(string)
	if newToken, _ := regResp.Body["token"].(string); newToken != "" {
		if err := c.cfg.Tokens.SaveToken(newCoreID, newToken); err != nil {
			return fmt.Errorf("%w: saving token: %v", ErrRegistrationFailed, err)
		}
	}

	c.enqueue(func(cc *Connection) {
		if cc.connGen != gen {
			return
		}
		cc.setState(ConnectionState{Kind: Connected, CoreID: newCoreID, CoreName: coreName})
	})
	return nil
}

// registrationBody builds the RegistrationRecord body for the register
// call. token is the previously remembered credential for this core, if
// any.
func (c *Connection) registrationBody(token string) map[string]interface{} {
	body := map[string]interface{}{
		"extension_id":      c.cfg.ExtensionID,
		"display_name":      c.cfg.DisplayName,
		"display_version":   c.cfg.DisplayVersion,
		"publisher":         c.cfg.Publisher,
		"email":             c.cfg.Email,
		"required_services": c.cfg.RequiredServices,
		"optional_services": c.cfg.OptionalServices,
		"provided_services": c.cfg.ProvidedServices,
	}
	if c.cfg.Website != "" {
		body["website"] = c.cfg.Website
	}
	if token != "" {
		body["token"] = token
	}
	return body
}
