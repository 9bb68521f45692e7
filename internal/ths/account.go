package ths

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Server describes a broker's trading gateway.
type Server struct {
	ID        int32     `yaml:"qsid"`
	Addresses []Address `yaml:"address"`
	Version   string    `yaml:"version"`
	TradePort uint16    `yaml:"trader_server_port"`
}

// Address is one candidate endpoint of a server. Only the first address
// of a server is used today.
type Address struct {
	Host string `yaml:"host"`
	Port int16  `yaml:"port"`
}

// Account holds logon credentials. Treat every field except Name as secret.
type Account struct {
	Name         string `yaml:"name"`
	BrokerName   string `yaml:"qs_name"`
	BranchID     string `yaml:"yyb_id"`
	Number       string `yaml:"account"`
	Password     string `yaml:"password"`
	CommPassword string `yaml:"comm_password"`
}

// String returns the display name only, so accounts are safe to log.
func (a Account) String() string {
	return a.Name
}

// PrimaryAddress returns the address used for logon.
func (s *Server) PrimaryAddress() (Address, error) {
	if len(s.Addresses) == 0 {
		return Address{}, ErrNoAddress
	}
	return s.Addresses[0], nil
}

// LoadAccounts reads the accounts file: a list of account records.
// JSON is valid YAML, so both account.json and account.yaml work.
func LoadAccounts(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法找到 %s 配置文件: %w", path, err)
	}

	var accounts []Account
	if err := yaml.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%s contains no accounts", path)
	}
	return accounts, nil
}

// LoadServers reads the servers file: a map of broker name to server.
func LoadServers(path string) (map[string]Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法找到 %s 配置文件: %w", path, err)
	}

	var servers map[string]Server
	if err := yaml.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return servers, nil
}

// FindAccount returns the account with the given display name.
func FindAccount(accounts []Account, name string) (*Account, bool) {
	for i := range accounts {
		if accounts[i].Name == name {
			return &accounts[i], true
		}
	}
	return nil, false
}

// AccountNames lists display names in file order.
func AccountNames(accounts []Account) []string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = a.Name
	}
	return names
}

// ResolveServer returns the server for an account's broker and checks the
// fields logon depends on.
func ResolveServer(servers map[string]Server, account *Account) (*Server, error) {
	if account.BrokerName == "" {
		return nil, fmt.Errorf("券商名称不能为空 (account %q)", account.Name)
	}

	server, ok := servers[account.BrokerName]
	if !ok {
		known := make([]string, 0, len(servers))
		for name := range servers {
			known = append(known, name)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("broker %q not found in servers file (known: %v)", account.BrokerName, known)
	}

	if server.Version == "" {
		return nil, fmt.Errorf("版本不能为空 (broker %q)", account.BrokerName)
	}
	if len(server.Addresses) == 0 {
		return nil, fmt.Errorf("broker %q: %w", account.BrokerName, ErrNoAddress)
	}
	return &server, nil
}
