package redis

import "strings"

// Every key lives under the "sf" namespace, colon separated:
//
//	sf:idempotency:<scope>:<key>
//	sf:rate_limit:<scope>
//	sf:session:access:<jti>
//	sf:cart:<token>
//	sf:changes            (pub/sub channel)
const keyNamespace = "sf"

func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

func (c *Client) IdempotencyKey(scope, id string) string { return key("idempotency", scope, id) }

func (c *Client) RateLimitKey(scope string) string { return key("rate_limit", scope) }

func (c *Client) AccessSessionKey(accessID string) string { return key("session", "access", accessID) }

func (c *Client) CartKey(token string) string { return key("cart", token) }

// ChangesChannel carries data-change notifications between API instances.
func (c *Client) ChangesChannel() string { return key("changes") }
